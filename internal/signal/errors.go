package signal

import "errors"

// ErrInvalidParameter se devuelve cuando una frecuencia (o la configuración
// del motor) no es estrictamente positiva.
var ErrInvalidParameter = errors.New("signal: invalid parameter")
