// Package prompt turns an utterance, the active persona and the stored
// conversation history into an ordered chat message sequence.
package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wizardline/wizardline/internal/persona"
	"github.com/wizardline/wizardline/internal/record"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ErrInvalidPersona is returned when the persona has no personality text;
// assembly cannot produce a system message without one.
var ErrInvalidPersona = errors.New("persona personality is empty")

// Assemble builds the model prompt: one system message interpolating the
// persona, the history replayed in order, then the new utterance as the
// trailing user message.
//
// History entries with an empty utterance are skipped. An entry with no
// recorded answer contributes a user message with no paired assistant
// message, reflecting an earlier failed or in-flight exchange.
//
// No truncation is applied; the sequence grows with the conversation.
func Assemble(utterance string, p persona.Config, history []record.Turn) ([]Message, error) {
	if strings.TrimSpace(p.Personality) == "" {
		return nil, ErrInvalidPersona
	}

	messages := make([]Message, 0, 2*len(history)+2)
	messages = append(messages, Message{
		Role:    RoleSystem,
		Content: fmt.Sprintf("You are %s. %s", p.Personality, p.Restrictions),
	})

	for _, turn := range history {
		if turn.Utterance == "" {
			continue
		}
		messages = append(messages, Message{Role: RoleUser, Content: turn.Utterance})
		if turn.Answer != "" {
			messages = append(messages, Message{Role: RoleAssistant, Content: turn.Answer})
		}
	}

	messages = append(messages, Message{Role: RoleUser, Content: utterance})
	return messages, nil
}
