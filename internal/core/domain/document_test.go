package domain

import "testing"

func TestCanTransitionForward(t *testing.T) {
	order := []DocumentStatus{
		StatusUploading,
		StatusExtractingText,
		StatusChunking,
		StatusStoringChunks,
		StatusCompleted,
	}
	for i := 0; i < len(order)-1; i++ {
		if !CanTransition(order[i], order[i+1]) {
			t.Fatalf("expected %s -> %s allowed", order[i], order[i+1])
		}
	}
	// Skipping stages forward is legal, only going back is not.
	if !CanTransition(StatusUploading, StatusStoringChunks) {
		t.Fatalf("forward skip must be allowed")
	}
}

func TestCanTransitionRejectsBackwardAndRepeat(t *testing.T) {
	if CanTransition(StatusChunking, StatusExtractingText) {
		t.Fatalf("backward transition allowed")
	}
	if CanTransition(StatusChunking, StatusChunking) {
		t.Fatalf("self transition allowed")
	}
}

func TestCanTransitionToErrorFromAnyActiveStage(t *testing.T) {
	for _, from := range []DocumentStatus{StatusUploading, StatusExtractingText, StatusChunking, StatusStoringChunks} {
		if !CanTransition(from, StatusError) {
			t.Fatalf("expected %s -> error allowed", from)
		}
	}
}

func TestTerminalStatesAreFinal(t *testing.T) {
	for _, from := range []DocumentStatus{StatusCompleted, StatusError} {
		if !from.Terminal() {
			t.Fatalf("%s should be terminal", from)
		}
		for _, to := range []DocumentStatus{StatusUploading, StatusExtractingText, StatusChunking, StatusStoringChunks, StatusCompleted, StatusError} {
			if CanTransition(from, to) {
				t.Fatalf("terminal %s must not transition to %s", from, to)
			}
		}
	}
}

func TestCanTransitionUnknownStatus(t *testing.T) {
	if CanTransition("bogus", StatusCompleted) || CanTransition(StatusUploading, "bogus") {
		t.Fatalf("unknown statuses must be rejected")
	}
}
