package scheme

import "time"

// Category classifies a scheme by its primary form of assistance.
type Category string

const (
	CategoryLoan          Category = "Loan"
	CategorySubsidy       Category = "Subsidy"
	CategoryGrant         Category = "Grant"
	CategoryTraining      Category = "Training"
	CategoryTechnology    Category = "Technology"
	CategoryMarketing     Category = "Marketing"
	CategoryCertification Category = "Certification"
	CategoryMixed         Category = "Mixed"
)

// Format selects how an entity block is rendered into prompt text.
type Format string

const (
	FormatMinimal    Format = "minimal"
	FormatStructured Format = "structured"
	FormatMarkdown   Format = "markdown"
	FormatJSON       Format = "json"
)

// RawRecord is one catalog entry as loaded from the source file.
// It is never mutated after loading.
type RawRecord struct {
	Name        string   `json:"name"`
	URL         string   `json:"url"`
	Ministry    string   `json:"ministry"`
	Overview    string   `json:"overview"`
	Financial   string   `json:"financial_details"`
	Benefits    string   `json:"benefits"`
	Eligibility string   `json:"eligibility"`
	Application string   `json:"application_process"`
	Documents   string   `json:"documents"`
	Sources     string   `json:"sources"`
	Tags        []string `json:"tags"`
}

// Financial holds figures extracted from a record's financial text.
// Nil pointer fields mean the figure was not found in the text.
type Financial struct {
	LoanMin             *float64
	LoanMax             *float64
	SubsidyPercentUrban *float64
	SubsidyPercentRural *float64
	CollateralRequired  *bool
}

// Entity is the processed, structured form of one scheme record.
// Entities are constructed only by the processor and are immutable
// once built.
type Entity struct {
	ID                string
	Name              string
	ShortName         string
	URL               string
	Category          Category
	Tags              []string
	Audiences         []string
	KeyBenefits       []string
	Eligibility       []string
	Financial         *Financial
	ApplicationSteps  []string
	Documents         []string
	OnlineApplication bool
	MinimalSummary    string
	DetailedSummary   string
	PopularityRank    int
}

// Location is the user's stated place of business.
type Location struct {
	State   string
	IsRural *bool
}

// Profile accumulates what is known about the user. Fields are only
// ever filled in when unset, never overwritten.
type Profile struct {
	BusinessType  string
	BusinessStage string
	Location      Location
	Category      string
	Gender        string
	Interests     []string
}

// HistoryTurn is one side of one conversation exchange.
type HistoryTurn struct {
	Role         string
	Text         string
	Timestamp    time.Time
	MentionedIDs []string
}

// MaxHistoryTurns bounds how much history a session retains; the
// oldest turns are dropped first.
const MaxHistoryTurns = 20

// Session is the per-conversation state held in memory between turns.
type Session struct {
	ID         string
	Profile    *Profile
	History    []HistoryTurn
	Language   string
	CreatedAt  time.Time
	LastActive time.Time
}

// TurnContext is the ephemeral per-request bundle handed back to the
// caller alongside the composed prompt. It is never persisted.
type TurnContext struct {
	Query    string
	Profile  *Profile
	Entities []Entity
	History  []HistoryTurn
	Format   Format
}
