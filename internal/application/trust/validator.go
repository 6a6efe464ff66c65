// Package trust valida el secreto compartido de las llamadas
// backend-to-backend (sin sesión de usuario).
package trust

import "crypto/subtle"

// ServiceValidator compara en tiempo constante la clave suministrada contra
// uno o más secretos configurados. Se aceptan el secreto vigente y el
// anterior a la vez para soportar ventanas de rotación.
//
// Estas llamadas además envían el tenant en una cabecera explícita; el
// protocolo NO liga criptográficamente esa cabecera al secreto; que el
// caller mande el tenant correcto es una asunción de confianza declarada,
// no una garantía impuesta.
type ServiceValidator struct {
	keys [][]byte
}

// NewServiceValidator construye el validador. Las claves vacías se ignoran.
func NewServiceValidator(current, previous string) *ServiceValidator {
	v := &ServiceValidator{}
	for _, k := range []string{current, previous} {
		if k != "" {
			v.keys = append(v.keys, []byte(k))
		}
	}
	return v
}

// IsValidServiceKey compara la clave contra todos los secretos configurados
// usando comparación en tiempo constante, sin cortocircuito, para no filtrar
// información por canal temporal.
func (v *ServiceValidator) IsValidServiceKey(key string) bool {
	if key == "" || len(v.keys) == 0 {
		return false
	}
	in := []byte(key)
	valid := false
	for _, k := range v.keys {
		if subtle.ConstantTimeCompare(in, k) == 1 {
			valid = true
		}
	}
	return valid
}
