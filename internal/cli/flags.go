package cli

// Flags holds all command-line flag values
type Flags struct {
	CfgFile     string
	Interactive bool

	// Generator flags
	Provider string
	Model    string
	BaseURL  string
	Seed     int64

	// Initial conversion context
	Context string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{}
}
