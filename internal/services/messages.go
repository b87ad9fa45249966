// Notification message catalog.
//
// The campus deployment is Portuguese-facing while the API itself is
// English; notification texts are therefore looked up per configured locale.
// Locale selection uses golang.org/x/text's matcher so that region variants
// ("pt-BR") fall back to their base language.
package services

import (
	"fmt"

	"golang.org/x/text/language"

	"github.com/lfarias/go-keys-backend/internal/domain"
)

// supportedLocales lists the catalog languages; the first entry is the
// fallback when matching fails.
var supportedLocales = []language.Tag{
	language.English,
	language.Portuguese,
}

var localeMatcher = language.NewMatcher(supportedLocales)

// messageCatalog maps catalog index (per supportedLocales) and notification
// type to a format string. Placeholders: %[1]s = counterpart user name,
// %[2]s = room name.
var messageCatalog = []map[string]string{
	{ // English
		domain.TypeReservationRequest:   "%[1]s requested the key for %[2]s",
		domain.TypeDevolutionRequest:    "%[1]s wants to return the key for %[2]s",
		domain.TypeTradeRequest:         "%[1]s wants to take over the key for %[2]s",
		domain.TypeKeyRequest:           "%[1]s (administration) requests the key for %[2]s back",
		domain.TypeReservationApproved:  "Your reservation request for %[2]s has been approved",
		domain.TypeReservationRejected:  "Your reservation request for %[2]s has been rejected",
		domain.TypeDevolutionConfirmed:  "Your return of %[2]s has been confirmed",
		domain.TypeDevolutionRejected:   "Your return of %[2]s was not confirmed; please hand the key to the administration in person",
		domain.TypeTradeAccepted:        "Your trade request for %[2]s has been accepted",
		domain.TypeTradeRejected:        "Your trade request for %[2]s was rejected",
		domain.TypeKeyRequestConfirmed:  "%[1]s agreed to hand back the key for %[2]s",
		domain.TypeKeyRequestRejected:   "%[1]s declined to hand back the key for %[2]s",
		domain.TypeRequestExpired:       "Your pending request for %[2]s expired without a decision",
	},
	{ // Portuguese
		domain.TypeReservationRequest:   "%[1]s solicitou a chave da sala %[2]s",
		domain.TypeDevolutionRequest:    "%[1]s deseja devolver a chave da sala %[2]s",
		domain.TypeTradeRequest:         "%[1]s deseja assumir a chave da sala %[2]s",
		domain.TypeKeyRequest:           "%[1]s (secretaria) solicita a devolução da chave da sala %[2]s",
		domain.TypeReservationApproved:  "Sua solicitação de reserva da sala %[2]s foi aprovada",
		domain.TypeReservationRejected:  "Sua solicitação de reserva da sala %[2]s foi recusada",
		domain.TypeDevolutionConfirmed:  "Sua devolução da sala %[2]s foi confirmada",
		domain.TypeDevolutionRejected:   "Sua devolução da sala %[2]s não foi confirmada; por favor entregue a chave na secretaria",
		domain.TypeTradeAccepted:        "Sua solicitação de troca da sala %[2]s foi aceita",
		domain.TypeTradeRejected:        "Sua solicitação de troca da sala %[2]s foi recusada",
		domain.TypeKeyRequestConfirmed:  "%[1]s concordou em devolver a chave da sala %[2]s",
		domain.TypeKeyRequestRejected:   "%[1]s recusou devolver a chave da sala %[2]s",
		domain.TypeRequestExpired:       "Sua solicitação pendente para a sala %[2]s expirou sem decisão",
	},
}

// MessageCatalog renders notification texts for one configured locale.
type MessageCatalog struct {
	index int
}

// NewMessageCatalog picks the best supported language for the given BCP 47
// locale string ("en", "pt", "pt-BR", ...). Unknown locales fall back to
// English.
func NewMessageCatalog(locale string) *MessageCatalog {
	tag, err := language.Parse(locale)
	if err != nil {
		return &MessageCatalog{index: 0}
	}
	_, index, _ := localeMatcher.Match(tag)
	return &MessageCatalog{index: index}
}

// Render produces the text for a notification type. counterpart is the name
// of the other party in the exchange and room the display name of the room.
// Unknown types fall back to a neutral "room: type" string so a missing
// catalog entry never blocks a workflow.
func (c *MessageCatalog) Render(typ, counterpart, room string) string {
	if tmpl, ok := messageCatalog[c.index][typ]; ok {
		return fmt.Sprintf(tmpl, counterpart, room)
	}
	return fmt.Sprintf("%s: %s", room, typ)
}
