/*
Package dsl provides two ways to write action batches without hand-building domain values.

The fluent builder is type-checked Go:

	batch, err := dsl.NewBatch().
		Select("A1:A10").
		Set("Test Data").
		Format("bold").
		TellUser("Bold applied").
		Terminate().
		Build()

The text language is the compact form planners and scenario files use. Each
entry is `REGEX <pattern> | VERB params`, entries are separated by ";" or a
newline, and `REGEX ^.*$` means no filter:

	REGEX ^.*$ | SELECT C1:C-1
	REGEX ^\?.*$ | FORMAT style: backgroundcolor, color: yellow
	REGEX ^.*$ | TELLUSER Highlighted the questions in column C.

Parse turns text into a domain.Batch and Print does the reverse.
*/
package dsl
