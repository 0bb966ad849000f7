package game

// ServiceKind selects which generation backend a session uses.
type ServiceKind string

const (
	ServiceCloud ServiceKind = "cloud"
	ServiceLocal ServiceKind = "local"
)

// GenerationContext classifies an image request so the right model can be
// picked from the assignment table.
type GenerationContext string

const (
	ContextCharacter GenerationContext = "character"
	ContextNPC       GenerationContext = "npc"
	ContextScene     GenerationContext = "scene"
	ContextCreature  GenerationContext = "creature"
)

// EngineModels is the model assignment for one backend: a text model and one
// image model per generation context.
type EngineModels struct {
	TextModel   string                       `json:"text_model"`
	ImageModels map[GenerationContext]string `json:"image_models"`
}

// Settings is the per-session engine configuration.
type Settings struct {
	Service      ServiceKind  `json:"service"`
	PromptAssist bool         `json:"prompt_assist"`
	Cloud        EngineModels `json:"cloud"`
	Local        EngineModels `json:"local"`
}

// DefaultSettings returns the stock cloud/local model assignments.
func DefaultSettings() Settings {
	return Settings{
		Service:      ServiceCloud,
		PromptAssist: false,
		Cloud: EngineModels{
			TextModel: "gemini-2.5-flash",
			ImageModels: map[GenerationContext]string{
				ContextCharacter: "imagen-4.0-generate-001",
				ContextNPC:       "imagen-4.0-generate-001",
				ContextScene:     "imagen-4.0-generate-001",
				ContextCreature:  "imagen-4.0-generate-001",
			},
		},
		Local: EngineModels{
			TextModel: "gemma-2b-it",
			ImageModels: map[GenerationContext]string{
				ContextCharacter: "sd-turbo",
				ContextNPC:       "sd-turbo",
				ContextScene:     "sd-turbo",
				ContextCreature:  "sd-turbo",
			},
		},
	}
}

// ImageModel resolves the model for a generation context under the active
// service, falling back to the scene assignment when the context is unmapped.
func (s Settings) ImageModel(ctx GenerationContext) string {
	models := s.Cloud.ImageModels
	if s.Service == ServiceLocal {
		models = s.Local.ImageModels
	}
	if m, ok := models[ctx]; ok && m != "" {
		return m
	}
	return models[ContextScene]
}

// TextModel resolves the text model for the active service.
func (s Settings) TextModel() string {
	if s.Service == ServiceLocal {
		return s.Local.TextModel
	}
	return s.Cloud.TextModel
}
