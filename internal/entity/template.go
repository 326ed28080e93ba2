package entity

// ParsingTemplate is a named, reusable custom instruction for the extraction stage.
type ParsingTemplate struct {
	ID                string `json:"id" yaml:"id"`
	Name              string `json:"name" yaml:"name"`
	Description       string `json:"description" yaml:"description"`
	CustomInstruction string `json:"customInstruction" yaml:"customInstruction"`
}
