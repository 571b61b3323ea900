package treesitter

// Configuration constants for the C# parser.
const (
	// DefaultMaxFileSize is the largest source accepted by Parse.
	DefaultMaxFileSize = 10 * 1024 * 1024 // 10MB

	// CSharpLanguage is the language attribute recorded by ObservableParser.
	CSharpLanguage = "csharp"
)
