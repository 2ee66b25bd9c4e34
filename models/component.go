package models

// CheckType define como a resposta da verificação é interpretada.
type CheckType string

const (
	// CheckDeep expects a JSON body with a self-reported "status" field.
	CheckDeep CheckType = "deep"
	// CheckShallow only looks at the HTTP status code.
	CheckShallow CheckType = "shallow"
)

// ComponentConfig is one entry of the static component registry.
type ComponentConfig struct {
	ID        string    `yaml:"id" json:"id"`
	Name      string    `yaml:"name" json:"name"`
	URL       string    `yaml:"url" json:"url"`
	CheckType CheckType `yaml:"checkType" json:"checkType"`
	Method    string    `yaml:"method" json:"method"`
}

// ComponentStatusRecord is the publicly rendered status of a component.
type ComponentStatusRecord struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	DisplayOrder  int    `json:"displayOrder"`
	CurrentStatus Status `json:"currentStatus"`
}
