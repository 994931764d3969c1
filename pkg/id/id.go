package id

import (
	"github.com/gofrs/uuid"
)

// GenTraceID generate a trace id
func GenTraceID() string {
	return uuid.Must(uuid.NewV4()).String()
}
