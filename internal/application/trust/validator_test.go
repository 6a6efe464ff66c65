package trust_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tu-usuario/consola-pro/internal/application/trust"
)

func TestIsValidServiceKey_ClaveVigente(t *testing.T) {
	v := trust.NewServiceValidator("clave-actual", "")
	assert.True(t, v.IsValidServiceKey("clave-actual"))
	assert.False(t, v.IsValidServiceKey("clave-incorrecta"))
	assert.False(t, v.IsValidServiceKey(""))
}

func TestIsValidServiceKey_VentanaDeRotacion(t *testing.T) {
	// Durante la rotación se aceptan la clave nueva y la anterior.
	v := trust.NewServiceValidator("clave-nueva", "clave-vieja")
	assert.True(t, v.IsValidServiceKey("clave-nueva"))
	assert.True(t, v.IsValidServiceKey("clave-vieja"))
	assert.False(t, v.IsValidServiceKey("otra"))
}

func TestIsValidServiceKey_SinSecretosConfigurados(t *testing.T) {
	// Sin secretos configurados nada es válido, ni la cadena vacía.
	v := trust.NewServiceValidator("", "")
	assert.False(t, v.IsValidServiceKey(""))
	assert.False(t, v.IsValidServiceKey("cualquiera"))
}
