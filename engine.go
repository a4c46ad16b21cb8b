package logging

// Engine is the narrow contract a logging backend must satisfy. Each call
// emits exactly one machine-parseable JSON object whose top level carries
// the message, the engine-native level field, and every meta entry.
// Implementations must be safe for concurrent use and must swallow write
// failures; the facade assumes engines never propagate errors upward.
//
// Engines holding resources may additionally implement io.Closer;
// Service.Close performs the type assertion and closes them.
type Engine interface {
	Log(level Level, message string, meta map[string]any)
	Debug(message string, meta map[string]any)
	Info(message string, meta map[string]any)
	Warn(message string, meta map[string]any)
	Error(message string, meta map[string]any)
}

// sanitizeMeta guards the engine-native fields: a meta map carrying
// "level" or "message" keys would emit duplicate JSON fields, so those
// entries are stripped. The input map is never modified.
func sanitizeMeta(meta map[string]any) map[string]any {
	_, hasLevel := meta[FieldLevel]
	_, hasMessage := meta[FieldMessage]
	if !hasLevel && !hasMessage {
		return meta
	}
	out := make(map[string]any, len(meta))
	for k, v := range meta {
		if k == FieldLevel || k == FieldMessage {
			continue
		}
		out[k] = v
	}
	return out
}

// NopEngine discards everything. It backs uninitialized services so that
// logging before Initialize or after Close can never panic.
type NopEngine struct{}

func (NopEngine) Log(Level, string, map[string]any) {}
func (NopEngine) Debug(string, map[string]any)      {}
func (NopEngine) Info(string, map[string]any)       {}
func (NopEngine) Warn(string, map[string]any)       {}
func (NopEngine) Error(string, map[string]any)      {}
