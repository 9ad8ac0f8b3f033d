package models

import (
	"fmt"
	"strings"
)

// Descriptors returns a fresh descriptor for every stored entity.
func Descriptors() []*EntityDescriptor {
	return []*EntityDescriptor{
		ChatMessageDescriptor(),
		LocationDescriptor(),
		MailQueueDescriptor(),
		OidcProviderDescriptor(),
		RealmDescriptor(),
	}
}

// LookupDescriptor finds an entity by name or table, ignoring case and
// the separators used on the command line ("mail-queue", "mail_queue").
func LookupDescriptor(name string) (*EntityDescriptor, error) {
	want := normalizeName(name)
	for _, d := range Descriptors() {
		if normalizeName(d.Name) == want || normalizeName(d.Table) == want {
			return d, nil
		}
	}
	return nil, fmt.Errorf("unknown entity %q", name)
}

func normalizeName(s string) string {
	s = strings.ToLower(s)
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(s)
}
