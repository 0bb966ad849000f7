package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, ServiceCloud, s.Service)
	assert.Equal(t, "gemini-2.5-flash", s.TextModel())
	assert.Equal(t, "imagen-4.0-generate-001", s.ImageModel(ContextScene))
}

func TestSettings_LocalService(t *testing.T) {
	s := DefaultSettings()
	s.Service = ServiceLocal
	assert.Equal(t, "gemma-2b-it", s.TextModel())
	assert.Equal(t, "sd-turbo", s.ImageModel(ContextCharacter))
}

func TestSettings_ImageModelPerContext(t *testing.T) {
	s := DefaultSettings()
	s.Cloud.ImageModels[ContextCreature] = "imagen-creature-custom"

	assert.Equal(t, "imagen-creature-custom", s.ImageModel(ContextCreature))
	assert.Equal(t, "imagen-4.0-generate-001", s.ImageModel(ContextNPC))
}

func TestSettings_UnmappedContextFallsBackToScene(t *testing.T) {
	s := DefaultSettings()
	delete(s.Cloud.ImageModels, ContextCreature)

	assert.Equal(t, s.Cloud.ImageModels[ContextScene], s.ImageModel(ContextCreature))
}
