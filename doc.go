// Package settings provides a small per-application settings store.
//
// A Store holds explicitly set values on top of an ordered chain of default
// layers. Reads walk the chain and return the first hit; writes always land
// on the store itself and shadow, never modify, the defaults.
//
// Stores persist themselves as flat JSON documents. The file name combines
// the store name with short hashes of the library and caller directories:
//
//	{name}-{hash4(library dir)}-{hash4(caller dir)}.cfg
//
// so the same store name used by different tools, or by different installs
// of this package, never collides on disk. Load and Save never fail loudly:
// the outcome is reported through ReturnValue and kept on the store.
//
// The store can be addressed two ways that reach the same data: Get and Set
// take any key and stringify it, while Attr and SetAttr additionally expose
// the bound Load and Save operations and the reserved internal fields.
package settings
