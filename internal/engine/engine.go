// Package engine orchestrates one chat turn end to end: reference
// resolution, property and language detection, the session state machine,
// intent classification, and finally either the knowledge cascade, a
// support handoff, or a canned reply. It is the single entry point the
// HTTP server, the websocket handler, and the MCP tools all call.
package engine

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/guestdesk/concierge/internal/chain"
	"github.com/guestdesk/concierge/internal/chat"
	"github.com/guestdesk/concierge/internal/detect"
	"github.com/guestdesk/concierge/internal/entities"
	"github.com/guestdesk/concierge/internal/intent"
	"github.com/guestdesk/concierge/internal/questionlog"
	"github.com/guestdesk/concierge/internal/resolver"
	"github.com/guestdesk/concierge/internal/session"
	"github.com/guestdesk/concierge/internal/support"
)

// Request is one inbound guest turn.
type Request struct {
	SessionID string
	Message   string
	History   chat.History
	// Property, when set by the caller (e.g. a property-scoped widget),
	// wins property detection outright.
	Property string
	// UserLocation is the caller-supplied guest position. The engine does
	// no geo work itself; location questions are deferred to the frontend
	// map collaborator, which consumes this value.
	UserLocation string
}

// Response is the engine's reply for one turn.
type Response struct {
	Text     string
	Property string
	Language string
	Intent   string
	// AwaitingProperty is true when the reply is a clarifying question
	// asking which hotel the guest means.
	AwaitingProperty bool
	// AwaitingSupportConfirmation is true when the reply asks the guest
	// to confirm a live-support handoff.
	AwaitingSupportConfirmation bool
	// HandedOff is true when a support notification was dispatched this turn.
	HandedOff bool
	// Answered is true when the text is grounded in stored knowledge;
	// AnswerLanguage names the knowledge language that produced it.
	Answered       bool
	AnswerLanguage string
}

// Engine wires the per-turn pipeline together.
type Engine struct {
	resolver   *resolver.Resolver
	detector   *detect.Detector
	classifier *intent.Classifier
	dict       *entities.Dictionary
	chain      *chain.Chain
	sessions   *session.Store
	notifier   support.Notifier
	qlog       *questionlog.Store
}

// New creates an Engine. qlog may be nil to disable question logging.
func New(res *resolver.Resolver, det *detect.Detector, cls *intent.Classifier, dict *entities.Dictionary, ch *chain.Chain, sessions *session.Store, notifier support.Notifier, qlog *questionlog.Store) *Engine {
	return &Engine{
		resolver:   res,
		detector:   det,
		classifier: cls,
		dict:       dict,
		chain:      ch,
		sessions:   sessions,
		notifier:   notifier,
		qlog:       qlog,
	}
}

// HandleTurn processes one guest message and returns the reply. Exactly one
// state-machine transition fires per turn; the updated session state is
// persisted before returning.
func (e *Engine) HandleTurn(ctx context.Context, req Request) (*Response, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, fmt.Errorf("empty message")
	}
	if strings.TrimSpace(req.SessionID) == "" {
		return nil, fmt.Errorf("empty session id")
	}

	st, err := e.sessions.Get(ctx, req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	message := e.resolver.Resolve(req.Message, req.History)
	det := e.detector.Detect(ctx, message, req.History, req.Property)

	resp := e.dispatch(ctx, req, st, message, det)

	st.LastLanguage = resp.Language
	st.UpdatedAt = time.Now().UTC()
	if err := e.sessions.Put(ctx, st); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	e.logTurn(ctx, req, resp)
	return resp, nil
}

// dispatch runs the state machine and intent handling. It mutates st but
// never persists it.
func (e *Engine) dispatch(ctx context.Context, req Request, st *session.State, message string, det detect.Result) *Response {
	language := det.Language
	if language == "" {
		language = st.LastLanguage
	}

	// Pending obligations are settled before fresh intent handling, so a
	// bare hotel name answers the open question instead of starting over.
	if st.Pending == session.PendingProperty {
		property := det.Property
		if p, ok := e.dict.IsPropertyNameOnly(message); ok {
			property = p
		}
		if property != detect.Unknown {
			stored := st.LastMessage
			st.ClearPending()
			st.LastProperty = property
			st.LastIntent = string(intent.IntentQuestion)
			return e.answer(ctx, st, stored, property, language)
		}
	}

	if st.Pending == session.PendingSupportConfirmation {
		if e.classifier.IsAffirmative(message) && st.LastProperty != "" {
			property := st.LastProperty
			st.ClearPending()
			st.LastIntent = string(intent.IntentSupportRequest)
			text := support.Handoff(ctx, e.notifier, property, language, req.History)
			return &Response{
				Text:      text,
				Property:  property,
				Language:  language,
				Intent:    string(intent.IntentSupportRequest),
				HandedOff: true,
			}
		}
		// A property name while the handoff awaits confirmation narrows or
		// retargets the request; the guest still has to say yes before
		// anything is sent.
		property := det.Property
		nameOnly := false
		if p, ok := e.dict.IsPropertyNameOnly(message); ok {
			property = p
			nameOnly = true
		}
		if property != detect.Unknown && (nameOnly || st.LastProperty == "") {
			st.LastProperty = property
			st.LastIntent = string(intent.IntentSupportRequest)
			return &Response{
				Text:                        support.ConfirmationPrompt(property, language),
				Property:                    property,
				Language:                    language,
				Intent:                      string(intent.IntentSupportRequest),
				AwaitingSupportConfirmation: true,
			}
		}
		// Anything else abandons the handoff and is handled normally.
		st.ClearPending()
	}

	property := det.Property
	if property == detect.Unknown {
		property = st.LastProperty
	}

	turnIntent := e.classifier.Classify(ctx, message, language, req.History)

	switch turnIntent {
	case intent.IntentSupportRequest:
		st.LastIntent = string(intent.IntentSupportRequest)
		if property == detect.Unknown {
			st.SetPending(session.PendingSupportConfirmation)
			st.LastProperty = ""
			return &Response{
				Text:                        support.AskPropertyPrompt(language),
				Language:                    language,
				Intent:                      string(intent.IntentSupportRequest),
				AwaitingSupportConfirmation: true,
			}
		}
		st.SetPending(session.PendingSupportConfirmation)
		st.LastProperty = property
		return &Response{
			Text:                        support.ConfirmationPrompt(property, language),
			Property:                    property,
			Language:                    language,
			Intent:                      string(intent.IntentSupportRequest),
			AwaitingSupportConfirmation: true,
		}

	case intent.IntentPropertyName:
		name, _ := e.dict.IsPropertyNameOnly(message)
		st.ClearPending()
		st.LastProperty = name
		st.LastIntent = string(intent.IntentPropertyName)
		return &Response{
			Text:     propertyGreeting(name, language),
			Property: name,
			Language: language,
			Intent:   string(intent.IntentPropertyName),
		}

	case intent.IntentQuestion:
		st.LastIntent = string(intent.IntentQuestion)
		if e.classifier.IsLocationQuestion(message) {
			return &Response{
				Text:     locationDeferralReply(language),
				Property: property,
				Language: language,
				Intent:   string(intent.IntentQuestion),
			}
		}
		if property == detect.Unknown {
			st.SetPending(session.PendingProperty)
			st.LastMessage = message
			if venue, ok := e.dict.EntityNamed(message); ok {
				st.LastAmenity = venue
			}
			return &Response{
				Text:             askPropertyForQuestion(language),
				Language:         language,
				Intent:           string(intent.IntentQuestion),
				AwaitingProperty: true,
			}
		}
		st.LastProperty = property
		return e.answer(ctx, st, message, property, language)

	default:
		st.LastIntent = string(intent.IntentSmallTalk)
		return &Response{
			Text:     smallTalkReply(language),
			Property: property,
			Language: language,
			Intent:   string(intent.IntentSmallTalk),
		}
	}
}

// answer runs the knowledge cascade and shapes the outcome into a reply.
// A generator wish for a human turns into the usual confirmation flow,
// arming the pending obligation so the next affirmative hands off.
func (e *Engine) answer(ctx context.Context, st *session.State, question, property, language string) *Response {
	resp := &Response{
		Property: property,
		Language: language,
		Intent:   string(intent.IntentQuestion),
	}

	ans, err := e.chain.Answer(ctx, question, property, language)
	if err != nil {
		log.Printf("warning: answer cascade for %s failed: %v", property, err)
		resp.Text = tryAgainReply(language)
		return resp
	}
	if ans.WantsHuman {
		st.SetPending(session.PendingSupportConfirmation)
		st.LastProperty = property
		st.LastIntent = string(intent.IntentSupportRequest)
		resp.Intent = string(intent.IntentSupportRequest)
		resp.Text = support.ConfirmationPrompt(property, language)
		resp.AwaitingSupportConfirmation = true
		return resp
	}
	if !ans.Found {
		if ans.GeneratorDown {
			resp.Text = tryAgainReply(language)
		} else {
			resp.Text = noKnowledgeReply(language)
		}
		return resp
	}
	resp.Text = ans.Text
	resp.Answered = true
	resp.AnswerLanguage = ans.SourceLanguage
	return resp
}

func (e *Engine) logTurn(ctx context.Context, req Request, resp *Response) {
	if e.qlog == nil {
		return
	}
	facility := ""
	if venue, ok := e.dict.EntityNamed(req.Message); ok {
		facility = venue
	}
	err := e.qlog.Append(ctx, questionlog.Entry{
		SessionID:      req.SessionID,
		Message:        req.Message,
		Property:       resp.Property,
		Language:       resp.Language,
		IsQuestion:     resp.Intent == string(intent.IntentQuestion),
		Category:       resp.Intent,
		Facility:       facility,
		Answered:       resp.Answered,
		AnswerLanguage: resp.AnswerLanguage,
	})
	if err != nil {
		log.Printf("warning: question log append failed: %v", err)
	}
}
