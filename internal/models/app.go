package models

// AppModel represents the page state - only what the regions display
type AppModel struct {
	Messages    []Message       // Message list, oldest first
	Typing      bool            // Typing placeholder shown below the list
	Speech      string          // Assistant speech bubble text
	Connection  ConnectionState // Status dot and status text
	SendEnabled bool            // Send affordance
	Width       int             // Terminal width
	Height      int             // Terminal height
}
