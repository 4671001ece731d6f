package loam

// ScenarioMetadata is the frontmatter of a scenario document.
//
//	---
//	id: highlight-questions
//	title: Highlight questions
//	actions:
//	  - {type: Select, col1: A, row1: 1, col2: A, row2: -1}
//	  - {type: Format, reg: '^\?.*$', style: backgroundcolor, color: yellow}
//	---
//	Marks every cell of column A that starts with a question mark.
//
// Actions use the planner wire form. Program holds the same batch in the
// text language and is used when Actions is empty.
type ScenarioMetadata struct {
	ID          string `json:"id" mapstructure:"id"`
	Title       string `json:"title" mapstructure:"title"`
	Description string `json:"description" mapstructure:"description"`
	Actions     []any  `json:"actions" mapstructure:"actions"`
	Program     string `json:"program" mapstructure:"program"`
}
