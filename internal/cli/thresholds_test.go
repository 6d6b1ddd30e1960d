package cli

import "testing"

func TestParsePatch(t *testing.T) {
	patch, err := parsePatch([]string{"max_connections=200", "max_inactive_ratio=0.5"})
	if err != nil {
		t.Fatalf("parsePatch: %v", err)
	}

	if patch.MaxConnections == nil || *patch.MaxConnections != 200 {
		t.Fatalf("MaxConnections = %v, want 200", patch.MaxConnections)
	}
	if patch.MaxInactiveRatio == nil || *patch.MaxInactiveRatio != 0.5 {
		t.Fatalf("MaxInactiveRatio = %v, want 0.5", patch.MaxInactiveRatio)
	}
	if patch.MaxProcessingJobs != nil {
		t.Fatal("MaxProcessingJobs should stay unset")
	}
}

func TestParsePatchErrors(t *testing.T) {
	cases := []struct {
		name string
		args []string
	}{
		{"missing equals", []string{"max_connections"}},
		{"unknown name", []string{"max_widgets=1"}},
		{"bad int", []string{"max_connections=lots"}},
		{"bad float", []string{"max_inactive_ratio=a third"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := parsePatch(tc.args); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
