package service

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/firstlist/presentd/internal/domain"
)

var statusMessagesID = map[domain.Status]string{
	domain.StatusPending:   "Sedang diproses",
	domain.StatusCompleted: "Selesai",
	domain.StatusFailed:    "Gagal",
}

// StatusMessage renders a short human-readable line for a job status, in the
// requester's locale. Unknown locales fall back to title-cased English.
func StatusMessage(status domain.Status, locale string) string {
	if locale == "id" {
		if msg, ok := statusMessagesID[status]; ok {
			return msg
		}
	}
	c := cases.Title(language.English)
	return c.String(strings.ToLower(string(status)))
}
