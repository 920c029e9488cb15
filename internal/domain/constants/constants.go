package constants

import "time"

// Dialog holati konstantalari
const (
	// StateCollectingName waiting for the user to introduce themselves
	StateCollectingName = "collecting_name"

	// StateBrowsing free-form search: updates, intents, listing fetches
	StateBrowsing = "browsing"

	// StateCollectingFilters guided question loop over missing criteria
	StateCollectingFilters = "collecting_filters"

	// StateViewingSelection waiting for the user to pick shown listings
	StateViewingSelection = "viewing_selection"

	// StateViewingRequest waiting for a phone number to finish the viewing request
	StateViewingRequest = "viewing_request"
)

// Savol kaliti konstantalari (question_key in the questions worksheet)
const (
	SlotName           = "name"
	SlotDistrict       = "district"
	SlotRooms          = "rooms"
	SlotState          = "state"
	SlotCondition      = "condition"
	SlotBudget         = "budget"
	SlotPrice          = "price"
	SlotSection        = "section"
	SlotArea           = "area"
	SlotFloor          = "floor"
	SlotFloorsTotal    = "floors_total"
	SlotBuildingFloors = "building_floors"
)

// Intent nomlari
const (
	IntentNewSearch = "new_search"
	IntentShowMore  = "more"
	IntentSkip      = "skip"
	IntentViewing   = "viewing"
	IntentContinue  = "continue"
)

// Copy kalitlari (reactions worksheet overrides the built-in texts by key)
const (
	CopyGreeting             = "greeting"
	CopyAskName              = "ask_name"
	CopyGreetName            = "greet_name"
	CopyAskParams            = "ask_params"
	CopyNotUnderstood        = "not_understood"
	CopyClarify              = "clarify"
	CopyNewSearch            = "new_search_started"
	CopyReadyToSend          = "ready_to_send"
	CopyNoResults            = "no_results"
	CopySummaryHeader        = "summary_header"
	CopyExtraOffersZero      = "extra_offers_zero"
	CopyExtraOffersMore      = "extra_offers_more"
	CopyViewingPrompt        = "viewing_prompt"
	CopyViewingNothingShown  = "viewing_nothing_shown"
	CopyViewingNotFound      = "viewing_not_found"
	CopyViewingAllRequested  = "viewing_all_requested"
	CopyViewingSomeRequested = "viewing_some_requested"
	CopyContactPrompt        = "contact_prompt"
	CopyContactReminder      = "contact_reminder"
	CopyContactThanks        = "contact_thanks"
	CopyContactSaved         = "contact_saved"
	CopySilence              = "silence"
)

// Worksheet nomlari
const (
	TableDistricts      = "districts"
	TableDictionaries   = "dictionaries"
	TableFilterPatterns = "filter_patterns"
	TableQuestions      = "questions"
	TableSections       = "sections"
	TableIntents        = "intents"
	TableObjections     = "objections"
	TableReactions      = "reactions"
	TableWelcome        = "welcome"
)

// AllTables barcha worksheetlar reload tartibida
var AllTables = []string{
	TableDistricts,
	TableDictionaries,
	TableFilterPatterns,
	TableQuestions,
	TableSections,
	TableIntents,
	TableObjections,
	TableReactions,
	TableWelcome,
}

// Qidiruv konstantalari
const (
	// DefaultPageSize nechta e'lon bir sahifada yuboriladi
	DefaultPageSize = 3

	// DefaultSort listings API uchun standart tartiblash
	DefaultSort = "newest"

	// DefaultQuestionOrder order ustuni bo'sh bo'lsa ishlatiladi
	DefaultQuestionOrder = 999
)

// Vaqt konstantalari
const (
	// DefaultSilenceThreshold shundan keyin jim qolgan suhbatga eslatma yuboriladi
	DefaultSilenceThreshold = 15 * time.Minute

	// DefaultSilenceCheckInterval jimlik tekshiruvi davri
	DefaultSilenceCheckInterval = 30 * time.Second

	// DefaultSessionTTL memory sessiyalar shundan keyin tozalanadi
	DefaultSessionTTL = 24 * time.Hour

	// TurnTimeout bitta xabarni qayta ishlash uchun max vaqt
	TurnTimeout = 30 * time.Second
)

// Xabar yuboruvchi belgilari (messages jadvalidagi sender ustuni)
const (
	SenderUser  = "user"
	SenderAgent = "agent"
)
