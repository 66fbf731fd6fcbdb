package kube

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/shvbsle/shev/internal/entry"
	"github.com/shvbsle/shev/internal/graphic"
	"github.com/shvbsle/shev/internal/source"
)

func clusterObjects() []runtime.Object {
	return []runtime.Object{
		&corev1.Namespace{
			ObjectMeta: metav1.ObjectMeta{Name: "default", Labels: map[string]string{"team": "core", "env": "dev"}},
			Status:     corev1.NamespaceStatus{Phase: corev1.NamespaceActive},
		},
		&corev1.Namespace{
			ObjectMeta: metav1.ObjectMeta{Name: "old"},
			Status:     corev1.NamespaceStatus{Phase: corev1.NamespaceTerminating},
		},
		&corev1.Pod{
			ObjectMeta: metav1.ObjectMeta{Name: "web", Namespace: "default"},
			Spec: corev1.PodSpec{
				NodeName:       "node-1",
				InitContainers: []corev1.Container{{Name: "migrate", Image: "migrate:latest"}},
				Containers:     []corev1.Container{{Name: "app", Image: "app:latest"}},
			},
			Status: corev1.PodStatus{
				Phase: corev1.PodRunning,
				PodIP: "10.0.0.5",
				InitContainerStatuses: []corev1.ContainerStatus{{
					Name:  "migrate",
					State: corev1.ContainerState{Terminated: &corev1.ContainerStateTerminated{Reason: "Completed"}},
				}},
				ContainerStatuses: []corev1.ContainerStatus{{
					Name:         "app",
					Ready:        true,
					RestartCount: 2,
					State:        corev1.ContainerState{Running: &corev1.ContainerStateRunning{}},
				}},
			},
		},
		&corev1.Pod{
			ObjectMeta: metav1.ObjectMeta{Name: "batch", Namespace: "default"},
			Spec:       corev1.PodSpec{Containers: []corev1.Container{{Name: "job", Image: "job:latest"}}},
			Status:     corev1.PodStatus{Phase: corev1.PodPending},
		},
	}
}

func load(t *testing.T) *entry.Registry {
	t.Helper()
	s := NewWithClientset(fake.NewSimpleClientset(clusterObjects()...))
	registry, initial, err := s.Load(context.Background(), source.Options{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if initial != NamespacesID {
		t.Errorf("Expected initial view %q, got %q", NamespacesID, initial)
	}
	return registry
}

func lookup(t *testing.T, r *entry.Registry, id string) *entry.View {
	t.Helper()
	v, err := r.Lookup(id)
	if err != nil {
		t.Fatalf("Expected view %q, got %v", id, err)
	}
	return v
}

func titles(v *entry.View) []string {
	out := make([]string, len(v.Items))
	for i, e := range v.Items {
		out[i] = e.DisplayTitle
	}
	return out
}

func decode(t *testing.T, e *entry.Entry) document {
	t.Helper()
	var doc document
	if err := json.Unmarshal([]byte(e.Content), &doc); err != nil {
		t.Fatalf("Expected a document, got %v", err)
	}
	return doc
}

func TestLoadViews(t *testing.T) {
	registry := load(t)

	want := []string{
		PodID("default", "batch"),
		PodID("default", "web"),
		NamespaceID("default"),
		NamespaceID("old"),
		NamespacesID,
	}
	if diff := cmp.Diff(want, registry.IDs()); diff != "" {
		t.Errorf("View ids mismatch (-want +got):\n%s", diff)
	}
}

func TestNamespacesView(t *testing.T) {
	registry := load(t)
	view := lookup(t, registry, NamespacesID)

	if diff := cmp.Diff([]string{"default", "old"}, titles(view)); diff != "" {
		t.Errorf("Namespaces mismatch (-want +got):\n%s", diff)
	}
	if view.Transition != nil {
		t.Errorf("Expected no transition out of the root, got %+v", view.Transition)
	}

	def, old := view.Items[0], view.Items[1]
	if def.Flag != entry.FlagGreen || old.Flag != entry.FlagRed {
		t.Errorf("Expected active green and terminating red, got %v and %v", def.Flag, old.Flag)
	}
	if def.Primary == nil || def.Primary.ID != NamespaceID("default") {
		t.Errorf("Expected a transition to the pods of default, got %+v", def.Primary)
	}
	if def.ExtraContent != "env=dev\nteam=core" {
		t.Errorf("Expected sorted labels, got %q", def.ExtraContent)
	}

	doc := decode(t, &def)
	if !strings.Contains(doc.Summary, "pods: 2") {
		t.Errorf("Expected the pod count in the summary, got %q", doc.Summary)
	}
	if !strings.Contains(doc.Detail, "name: default") {
		t.Errorf("Expected a YAML manifest, got %q", doc.Detail)
	}
}

func TestPodsView(t *testing.T) {
	registry := load(t)
	view := lookup(t, registry, NamespaceID("default"))

	if diff := cmp.Diff([]string{"batch", "web"}, titles(view)); diff != "" {
		t.Errorf("Pods mismatch (-want +got):\n%s", diff)
	}
	wantBack := &entry.Transition{ID: NamespacesID, Description: "back to namespaces"}
	if diff := cmp.Diff(wantBack, view.Transition); diff != "" {
		t.Errorf("Back transition mismatch (-want +got):\n%s", diff)
	}

	batch, web := view.Items[0], view.Items[1]
	if batch.Flag != entry.FlagBlue || batch.CategoryA != "Pending" {
		t.Errorf("Expected a blue pending pod, got %v %q", batch.Flag, batch.CategoryA)
	}
	if web.Flag != entry.FlagGreen || web.CategoryB != "node-1" || web.DetailTitle != "default/web" {
		t.Errorf("Expected a green running pod on node-1, got %+v", web)
	}
	if !strings.Contains(decode(t, &web).Summary, "ip: 10.0.0.5") {
		t.Errorf("Expected the pod ip in the summary")
	}
}

func TestContainersView(t *testing.T) {
	registry := load(t)
	view := lookup(t, registry, PodID("default", "web"))

	tests := []struct {
		title    string
		kind     string
		flag     entry.Flag
		contains string
	}{
		{"migrate", "init", entry.FlagBlue, "status: Terminated"},
		{"app", "container", entry.FlagGreen, "restarts: 2"},
	}
	if len(view.Items) != len(tests) {
		t.Fatalf("Expected %d containers, got %d", len(tests), len(view.Items))
	}
	for i, tt := range tests {
		got := view.Items[i]
		if got.DisplayTitle != tt.title || got.CategoryA != tt.kind || got.Flag != tt.flag {
			t.Errorf("Container %d: expected %s/%s/%v, got %s/%s/%v",
				i, tt.title, tt.kind, tt.flag, got.DisplayTitle, got.CategoryA, got.Flag)
		}
		doc := decode(t, &got)
		if !strings.Contains(doc.Summary, tt.contains) {
			t.Errorf("Expected %q in summary, got %q", tt.contains, doc.Summary)
		}
		if doc.Detail != "   1: fake logs" {
			t.Errorf("Expected the captured log, got %q", doc.Detail)
		}
	}

	job := lookup(t, registry, PodID("default", "batch")).Items[0]
	if job.Flag != entry.FlagRed || !strings.Contains(decode(t, &job).Summary, "status: Waiting") {
		t.Errorf("Expected a red waiting container without status, got %+v", job)
	}
}

func TestRender(t *testing.T) {
	registry := load(t)
	web := lookup(t, registry, NamespaceID("default")).Items[1]

	glyphs := func(mode entry.Mode) string {
		graphics, err := Render(&web, mode)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		var sb strings.Builder
		for _, g := range graphics {
			if ch, ok := g.(graphic.Char); ok {
				sb.WriteRune(ch.Ch)
			}
		}
		return sb.String()
	}

	if got := glyphs(ModeSummary); !strings.HasPrefix(got, "pod:webnamespace:default") {
		t.Errorf("Expected the summary, got %q", got)
	}
	if got := glyphs(ModeDetail); !strings.Contains(got, "nodeName:node-1") {
		t.Errorf("Expected the manifest, got %q", got)
	}

	if _, err := Render(&entry.Entry{Content: "nope"}, ModeSummary); err == nil {
		t.Error("Expected an error for content that is not a document")
	}
}

func TestFormatAge(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{30 * time.Second, "30s"},
		{5 * time.Minute, "5m"},
		{3 * time.Hour, "3h"},
		{47 * time.Hour, "47h"},
		{72 * time.Hour, "3d"},
	}

	for _, tt := range tests {
		if got := FormatAge(now, now.Add(-tt.ago)); got != tt.want {
			t.Errorf("FormatAge(%v) = %q, want %q", tt.ago, got, tt.want)
		}
	}
}

func TestHighlightYAML(t *testing.T) {
	text := "metadata:\n  name: web\n- item"
	colors := highlightYAML(text)

	if len(colors) != len([]rune(text)) {
		t.Fatalf("Expected one colour per rune, got %d for %d", len(colors), len([]rune(text)))
	}

	want := map[int]graphic.Color{
		0:  keyColor,   // m
		8:  keyColor,   // :
		9:  valueColor, // newline
		10: valueColor, // indent
		12: keyColor,   // n
		16: keyColor,   // :
		18: valueColor, // w
		22: valueColor, // -
	}
	for i, c := range want {
		if colors[i] != c {
			t.Errorf("Rune %d (%q): expected %+v, got %+v", i, text[i], c, colors[i])
		}
	}
}

func TestRenderHighlightsManifest(t *testing.T) {
	registry := load(t)
	def := lookup(t, registry, NamespacesID).Items[0]

	graphics, err := Render(&def, ModeDetail)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	var sawKey bool
	for _, g := range graphics {
		if ch, ok := g.(graphic.Char); ok && ch.Color == keyColor {
			sawKey = true
			break
		}
	}
	if !sawKey {
		t.Error("Expected highlighted YAML keys in the manifest")
	}

	web := lookup(t, registry, PodID("default", "web")).Items[1]
	graphics, err = Render(&web, ModeDetail)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	for _, g := range graphics {
		if ch, ok := g.(graphic.Char); ok && ch.Color != graphic.White {
			t.Fatalf("Expected plain log text, got %+v", ch.Color)
		}
	}
}
