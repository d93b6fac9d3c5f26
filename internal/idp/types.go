package idp

// SignInExperience is the part of the provider's public sign-in
// experience the auth UI reads.
type SignInExperience struct {
	SocialConnectors []SocialConnector `json:"socialConnectors"`
	PasswordPolicy   *PasswordPolicy   `json:"passwordPolicy,omitempty"`
}

// SocialConnector is a social sign-in connector as reported by the provider
type SocialConnector struct {
	ID       string        `json:"id"`
	Target   string        `json:"target"`
	Name     ConnectorName `json:"name"`
	Logo     string        `json:"logo"`
	LogoDark string        `json:"logoDark,omitempty"`
	Platform string        `json:"platform,omitempty"`
}

// ConnectorName holds the localized connector display names
type ConnectorName struct {
	En string `json:"en,omitempty"`
}

// Connector is a social connector in the shape the UI renders
type Connector struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Icon     string `json:"icon"`
	Logo     string `json:"logo"`
	LogoDark string `json:"logoDark,omitempty"`
	Platform string `json:"platform,omitempty"`
}

// ConnectorsResult is the connectors response. Error is set only when
// the provider could not be reached.
type ConnectorsResult struct {
	Connectors     []Connector     `json:"connectors"`
	PasswordPolicy *PasswordPolicy `json:"passwordPolicy,omitempty"`
	FromCache      *bool           `json:"fromCache,omitempty"`
	Error          string          `json:"error,omitempty"`
}

// PasswordPolicy is the provider's password complexity policy
type PasswordPolicy struct {
	Length         LengthRule         `json:"length"`
	CharacterTypes CharacterTypesRule `json:"characterTypes"`
	Rejects        RejectRules        `json:"rejects"`
}

// LengthRule bounds the password length
type LengthRule struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// CharacterTypesRule requires a minimum number of character classes
type CharacterTypesRule struct {
	Min int `json:"min"`
}

// RejectRules lists the password content the provider refuses
type RejectRules struct {
	Pwned                 bool     `json:"pwned"`
	RepetitionAndSequence bool     `json:"repetitionAndSequence"`
	UserInfo              bool     `json:"userInfo"`
	Words                 []string `json:"words"`
}

// DefaultPasswordPolicy is used whenever the provider's policy is unavailable
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		Length:         LengthRule{Min: 8, Max: 256},
		CharacterTypes: CharacterTypesRule{Min: 1},
		Rejects: RejectRules{
			Pwned:                 true,
			RepetitionAndSequence: true,
			UserInfo:              true,
			Words:                 []string{},
		},
	}
}

// ToConnector maps a provider connector to its UI shape
func (c SocialConnector) ToConnector() Connector {
	name := c.Target
	if name == "" {
		name = c.ID
	}
	label := c.Name.En
	if label == "" {
		label = name
	}
	return Connector{
		Name:     name,
		Label:    label,
		Icon:     "i-simple-icons-" + name,
		Logo:     c.Logo,
		LogoDark: c.LogoDark,
		Platform: c.Platform,
	}
}
