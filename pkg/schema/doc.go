// Package schema is the wire codec of the action language.
//
// Planners send actions as loosely typed JSON: rows may be numbers or strings
// ("row2": -1 and "row2": "-1" are the same), a range may come as "range":
// "A1:A10" instead of col1/row1/col2/row2, and Set may carry "value" instead
// of "text". Decode accepts all of these through mapstructure's weakly typed
// decoding and produces domain.Action values; Encode writes the canonical form.
//
//	batch, err := schema.UnmarshalBatch([]byte(`[
//	    {"type": "Select", "col1": "C", "row1": 1, "row2": "-1"},
//	    {"type": "Format", "style": "bold"}
//	]`))
//
// An unrecognised "type" decodes to domain.Unknown so the interpreter can skip
// it; a field of the wrong shape is a ValidationError.
package schema
