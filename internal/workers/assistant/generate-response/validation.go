package generateresponse

import "voice-assistant/internal/common/validation"

var inputSchema = validation.MustCompile(`{
	"type": "object",
	"required": ["message"],
	"properties": {
		"message":   {"type": "string", "maxLength": 2000, "description": "User text to answer"},
		"sessionId": {"type": "string", "description": "Conversation the message belongs to"}
	}
}`)
