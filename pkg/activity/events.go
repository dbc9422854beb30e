package activity

// Verbs emitted by settings stores.
const (
	VerbLoaded     = "settings.loaded"
	VerbLoadFailed = "settings.load_failed"
	VerbSaved      = "settings.saved"
	VerbSaveFailed = "settings.save_failed"
	VerbUpdated    = "settings.updated"
	VerbDeleted    = "settings.deleted"
)

// ObjectType identifies settings stores in emitted events.
const ObjectType = "settings_store"

// PersistEvent describes a load or save attempt. An empty path or a non-nil
// err selects the failure verb.
func PersistEvent(store, path string, saving bool, keys int, err error) Event {
	verb := VerbLoaded
	if saving {
		verb = VerbSaved
	}
	meta := map[string]any{"keys": keys}
	if path != "" {
		meta["path"] = path
	}
	if err != nil {
		meta["error"] = err.Error()
		if saving {
			verb = VerbSaveFailed
		} else {
			verb = VerbLoadFailed
		}
	}
	return Event{
		Verb:       verb,
		ObjectType: ObjectType,
		ObjectID:   store,
		Metadata:   meta,
	}
}

// KeyEvent describes a single key being written or removed.
func KeyEvent(store, key string, deleted bool) Event {
	verb := VerbUpdated
	if deleted {
		verb = VerbDeleted
	}
	return Event{
		Verb:       verb,
		ObjectType: ObjectType,
		ObjectID:   store,
		Metadata:   map[string]any{"key": key},
	}
}
