package model

// Phase is the discriminant of InteractionState
type Phase string

const (
	PhaseIdle      Phase = "idle"      // No result, no error
	PhaseAnalyzing Phase = "analyzing" // Request in flight
	PhaseSuccess   Phase = "success"   // Result available
	PhaseFailure   Phase = "failure"   // Submission failed, Message holds the reason
)

// InteractionState is the client-visible state of one analysis session.
// Result is set only in PhaseSuccess and Message only in PhaseFailure.
type InteractionState struct {
	Phase   Phase           `json:"phase" yaml:"phase"`
	Result  *AnalysisResult `json:"result,omitempty" yaml:"result,omitempty"`
	Message string          `json:"message,omitempty" yaml:"message,omitempty"`
}

// IdleState returns the initial state
func IdleState() InteractionState {
	return InteractionState{Phase: PhaseIdle}
}

// AnalyzingState returns the in-flight state. It carries no payload so a
// previous result is never shown while a new request runs.
func AnalyzingState() InteractionState {
	return InteractionState{Phase: PhaseAnalyzing}
}

// SuccessState returns the state holding result
func SuccessState(result *AnalysisResult) InteractionState {
	return InteractionState{Phase: PhaseSuccess, Result: result}
}

// FailureState returns the state holding a failure message
func FailureState(message string) InteractionState {
	return InteractionState{Phase: PhaseFailure, Message: message}
}

// Clone returns a copy that shares no memory with s
func (s InteractionState) Clone() InteractionState {
	s.Result = s.Result.Clone()
	return s
}
