package senders

import (
	"fmt"
	"hash/fnv"

	"github.com/davicafu/notifly/internal/notification/domain"
)

// StaticResolver sintetiza direcciones de contacto a partir del userId.
// Es la política de demo: en producción se sustituye por un cliente del
// directorio de contactos, que cumple el mismo port.
type StaticResolver struct {
	EmailDomain string
}

func NewStaticResolver(emailDomain string) *StaticResolver {
	if emailDomain == "" {
		emailDomain = "example.com"
	}
	return &StaticResolver{EmailDomain: emailDomain}
}

func (r *StaticResolver) EmailFor(userID string) string {
	return fmt.Sprintf("%s@%s", userID, r.EmailDomain)
}

// PhoneFor deriva un número determinista a partir del hash del userId.
func (r *StaticResolver) PhoneFor(userID string) string {
	h := fnv.New32a()
	h.Write([]byte(userID))
	return fmt.Sprintf("+1%09d", h.Sum32()%1000000000)
}

func (r *StaticResolver) PushTokenFor(userID string) string {
	return userID
}

// Verificación estática
var _ domain.ContactResolver = (*StaticResolver)(nil)
