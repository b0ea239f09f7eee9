package voiceengine

import "voiceengine/internal/eventqueue"

// PollEvent removes and returns the oldest pending Event, or ok=false if
// none are queued. A KindPCMFrame event's Samples slice is only valid
// until the next call to Tick.
func (e *Engine) PollEvent() (eventqueue.Event, bool) {
	return e.evQ.Pop()
}

func (e *Engine) pushSpeaking(speakerID uint16, speaking bool) {
	e.evQ.Push(eventqueue.Event{
		Kind:       eventqueue.KindSpeaking,
		SpeakerID:  speakerID,
		IsSpeaking: speaking,
	})
}
