package llm

// modelAliases maps short model names to vendor model IDs, per vendor.
// Quiz generation wants a fast, cheap model, so each vendor's short names
// point at its small tier first.
var modelAliases = map[string]map[string]string{
	"anthropic": {
		"claude-haiku":  "claude-haiku-4-5-20251001",
		"claude-sonnet": "claude-sonnet-4-5-20250929",
	},
	"openai": {
		"gpt-mini":    "gpt-4.1-mini",
		"gpt-4o-mini": "gpt-4o-mini",
		"gpt-4o":      "gpt-4o",
	},
	"gemini": {
		"gemini-flash-lite": "gemini-2.0-flash-lite",
		"gemini-flash":      "gemini-2.0-flash",
		"gemini-pro":        "gemini-2.5-pro",
	},
	"openrouter": {
		"gemini-flash": "google/gemini-2.0-flash-001",
		"claude-haiku": "anthropic/claude-haiku-4.5",
		"gpt-4o-mini":  "openai/gpt-4o-mini",
	},
}

// resolveModel returns the vendor model ID for name. Unknown names are
// taken to be vendor IDs already.
func resolveModel(vendor, name string) string {
	if id, ok := modelAliases[vendor][name]; ok {
		return id
	}
	return name
}
