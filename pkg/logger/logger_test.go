package logger_test

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

func TestNew_CampoServiceEnCadaLinea(t *testing.T) {
	log := logger.New(logger.Config{Env: "production", Level: "info", Service: "stock-ledger"})

	var buf bytes.Buffer
	zl := log.Zerolog().Output(&buf)
	zl.Info().Msg("hola")

	assert.Contains(t, buf.String(), `"service":"stock-ledger"`)
	assert.Contains(t, buf.String(), `"message":"hola"`)
}

func TestNew_NivelYDefault(t *testing.T) {
	log := logger.New(logger.Config{Env: "production", Level: "warn"})
	assert.Equal(t, zerolog.WarnLevel, log.Zerolog().GetLevel())

	log = logger.New(logger.Config{Env: "production", Level: "cualquiera"})
	assert.Equal(t, zerolog.InfoLevel, log.Zerolog().GetLevel())
}
