package models

// SocialSituation is one entry in the built-in social story catalog.
type SocialSituation struct {
	Key         string `json:"key" yaml:"key"`
	Label       string `json:"label" yaml:"label"`
	Description string `json:"description" yaml:"description"`
}
