// Package kube browses a snapshot of a Kubernetes cluster: namespaces, the
// pods of each namespace and the containers of each pod.
package kube

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"sigs.k8s.io/yaml"

	"github.com/shvbsle/shev/internal/entry"
	"github.com/shvbsle/shev/internal/filter"
	"github.com/shvbsle/shev/internal/graphic"
	"github.com/shvbsle/shev/internal/log"
	"github.com/shvbsle/shev/internal/source"
)

const (
	NamespacesID = "namespaces"

	// DefaultTailLines is how much of each container log is captured.
	DefaultTailLines = 100

	textSize = 16.0
)

// Modes of every cluster view.
const (
	ModeSummary entry.Mode = iota
	ModeDetail
)

var textBounds = graphic.Bounds{X: 20, Y: 20, W: 860, H: 2000}

// NamespaceID is the id of the view listing the pods of namespace.
func NamespaceID(namespace string) string {
	return "namespace/" + namespace
}

// PodID is the id of the view listing the containers of a pod.
func PodID(namespace, pod string) string {
	return "pod/" + namespace + "/" + pod
}

type Source struct {
	clientset kubernetes.Interface
	tailLines int64
	now       func() time.Time
}

var _ source.Source = (*Source)(nil)

// New returns a source that connects using the kubeconfig context named by
// the load target.
func New() *Source {
	return &Source{tailLines: DefaultTailLines, now: time.Now}
}

// NewWithClientset returns a source reading from cs.
func NewWithClientset(cs kubernetes.Interface) *Source {
	s := New()
	s.clientset = cs
	return s
}

func (s *Source) Name() string {
	return "kube"
}

func (s *Source) Description() string {
	return "Browse namespaces, pods and containers of a Kubernetes cluster"
}

func (s *Source) Aliases() []string {
	return []string{"k8s", "cluster"}
}

// Load takes a snapshot of the cluster. opts.Target names a kubeconfig
// context; empty means the current one.
func (s *Source) Load(ctx context.Context, opts source.Options) (*entry.Registry, string, error) {
	cs := s.clientset
	if cs == nil {
		var err error
		if cs, err = newClientset(opts.Target); err != nil {
			return nil, "", err
		}
	}

	version, err := cs.Discovery().ServerVersion()
	if err != nil {
		return nil, "", fmt.Errorf("connect to cluster: %w", err)
	}
	log.Source("kube").Info("connected to cluster", "context", opts.Target, "version", version.GitVersion)

	b := &builder{
		ctx:       ctx,
		cs:        cs,
		opts:      opts,
		tailLines: s.tailLines,
		now:       s.now(),
		registry:  entry.NewRegistry(),
	}
	if err := b.namespaces(); err != nil {
		return nil, "", err
	}
	log.Source("kube").Info("built cluster views", "views", b.registry.Len())
	return b.registry, NamespacesID, nil
}

type builder struct {
	ctx       context.Context
	cs        kubernetes.Interface
	opts      source.Options
	tailLines int64
	now       time.Time
	registry  *entry.Registry
}

// document is the content of every cluster entry.
type document struct {
	Summary string `json:"summary"`
	Detail  string `json:"detail"`
	// Manifest marks Detail as YAML to highlight.
	Manifest bool `json:"manifest,omitempty"`
}

func (b *builder) namespaces() error {
	list, err := b.cs.CoreV1().Namespaces().List(b.ctx, metav1.ListOptions{})
	if err != nil {
		return fmt.Errorf("list namespaces: %w", err)
	}
	namespaces := list.Items
	sort.Slice(namespaces, func(i, j int) bool { return namespaces[i].Name < namespaces[j].Name })

	items := make([]entry.Entry, 0, len(namespaces))
	for _, ns := range namespaces {
		pods, err := b.pods(ns.Name)
		if err != nil {
			return err
		}

		status := string(ns.Status.Phase)
		flag := entry.FlagGreen
		if ns.Status.Phase == corev1.NamespaceTerminating {
			flag = entry.FlagRed
		}
		summary := fmt.Sprintf("namespace: %s\nstatus: %s\nage: %s\npods: %d",
			ns.Name, status, FormatAge(b.now, ns.CreationTimestamp.Time), pods)

		e, err := b.entry(ns.Name, ns.Name, summary, &ns, ns.Labels)
		if err != nil {
			return err
		}
		e.CategoryA = status
		e.Flag = flag
		e.Primary = &entry.Transition{ID: NamespaceID(ns.Name), Description: "list pods"}
		items = append(items, e)
	}

	return b.registry.Register(&entry.View{
		ID:        NamespacesID,
		Title:     "Namespaces",
		Items:     items,
		ModeCount: 2,
		Filters:   b.opts.ViewFilters(filter.ByFlag("terminating", entry.FlagRed)),
		Render:    Render,
	})
}

// pods registers the view of a namespace's pods and returns how many there
// are.
func (b *builder) pods(namespace string) (int, error) {
	list, err := b.cs.CoreV1().Pods(namespace).List(b.ctx, metav1.ListOptions{})
	if err != nil {
		return 0, fmt.Errorf("list pods in %s: %w", namespace, err)
	}
	pods := list.Items
	sort.Slice(pods, func(i, j int) bool { return pods[i].Name < pods[j].Name })

	items := make([]entry.Entry, 0, len(pods))
	for _, pod := range pods {
		if err := b.containers(&pod); err != nil {
			return 0, err
		}

		status := podStatus(&pod)
		summary := fmt.Sprintf("pod: %s\nnamespace: %s\nstatus: %s\nnode: %s\nip: %s\nage: %s\ncontainers: %d",
			pod.Name, pod.Namespace, status, pod.Spec.NodeName, pod.Status.PodIP,
			FormatAge(b.now, pod.CreationTimestamp.Time), len(pod.Spec.InitContainers)+len(pod.Spec.Containers))

		e, err := b.entry(pod.Name, pod.Namespace+"/"+pod.Name, summary, &pod, pod.Labels)
		if err != nil {
			return 0, err
		}
		e.CategoryA = status
		e.CategoryB = pod.Spec.NodeName
		e.Flag = podFlag(status)
		e.Primary = &entry.Transition{ID: PodID(pod.Namespace, pod.Name), Description: "list containers"}
		items = append(items, e)
	}

	err = b.registry.Register(&entry.View{
		ID:         NamespaceID(namespace),
		Title:      "Pods in " + namespace,
		Items:      items,
		ModeCount:  2,
		Transition: &entry.Transition{ID: NamespacesID, Description: "back to namespaces"},
		Filters: b.opts.ViewFilters(
			filter.ByFlag("healthy", entry.FlagGreen),
			filter.ByFlag("failing", entry.FlagRed),
			filter.ByFlag("pending", entry.FlagBlue),
		),
		Render: Render,
	})
	return len(pods), err
}

func (b *builder) containers(pod *corev1.Pod) error {
	var items []entry.Entry
	add := func(c corev1.Container, statuses []corev1.ContainerStatus, kind string) error {
		status, ready, restarts := "Waiting", false, int32(0)
		if cs, ok := lo.Find(statuses, func(cs corev1.ContainerStatus) bool { return cs.Name == c.Name }); ok {
			status, ready, restarts = containerState(cs.State), cs.Ready, cs.RestartCount
		}

		logs, err := containerLogs(b.ctx, b.cs, pod.Namespace, pod.Name, c.Name, b.tailLines)
		if err != nil {
			log.Source("kube").Warn("failed to fetch logs", "pod", pod.Name, "container", c.Name, "error", err)
			logs = fmt.Sprintf("failed to fetch logs: %v", err)
		}

		summary := fmt.Sprintf("container: %s\nkind: %s\nimage: %s\nstatus: %s\nready: %t\nrestarts: %d",
			c.Name, kind, c.Image, status, ready, restarts)
		content, err := json.Marshal(document{Summary: summary, Detail: logs})
		if err != nil {
			return fmt.Errorf("encode container %s: %w", c.Name, err)
		}

		flag := entry.FlagRed
		switch {
		case ready:
			flag = entry.FlagGreen
		case status == "Terminated":
			flag = entry.FlagBlue
		}
		items = append(items, entry.Entry{
			DisplayTitle: c.Name,
			DetailTitle:  pod.Name + "/" + c.Name,
			Content:      string(content),
			CategoryA:    kind,
			Flag:         flag,
		})
		return nil
	}

	for _, c := range pod.Spec.InitContainers {
		if err := add(c, pod.Status.InitContainerStatuses, "init"); err != nil {
			return err
		}
	}
	for _, c := range pod.Spec.Containers {
		if err := add(c, pod.Status.ContainerStatuses, "container"); err != nil {
			return err
		}
	}

	return b.registry.Register(&entry.View{
		ID:         PodID(pod.Namespace, pod.Name),
		Title:      pod.Namespace + "/" + pod.Name,
		Items:      items,
		ModeCount:  2,
		Transition: &entry.Transition{ID: NamespaceID(pod.Namespace), Description: "back to pods"},
		Filters: b.opts.ViewFilters(
			filter.ByFlag("ready", entry.FlagGreen),
			filter.ByFlag("not ready", entry.FlagRed),
		),
		Render: Render,
	})
}

// entry builds an entry whose detail mode shows obj as YAML and whose extra
// content lists its labels.
func (b *builder) entry(title, detail, summary string, obj metav1.Object, labels map[string]string) (entry.Entry, error) {
	manifest, err := manifestYAML(obj)
	if err != nil {
		return entry.Entry{}, err
	}
	content, err := json.Marshal(document{Summary: summary, Detail: manifest, Manifest: true})
	if err != nil {
		return entry.Entry{}, fmt.Errorf("encode %s: %w", title, err)
	}
	return entry.Entry{
		DisplayTitle: title,
		DetailTitle:  detail,
		Content:      string(content),
		ExtraContent: formatLabels(labels),
	}, nil
}

func manifestYAML(obj metav1.Object) (string, error) {
	managed := obj.GetManagedFields()
	obj.SetManagedFields(nil)
	defer obj.SetManagedFields(managed)

	out, err := yaml.Marshal(obj)
	if err != nil {
		return "", fmt.Errorf("encode %s as yaml: %w", obj.GetName(), err)
	}
	return string(out), nil
}

func formatLabels(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}
	keys := lo.Keys(labels)
	sort.Strings(keys)
	return strings.Join(lo.Map(keys, func(k string, _ int) string {
		return k + "=" + labels[k]
	}), "\n")
}

func podStatus(pod *corev1.Pod) string {
	if pod.DeletionTimestamp != nil {
		return "Terminating"
	}
	if pod.Status.Phase == "" {
		return string(corev1.PodUnknown)
	}
	return string(pod.Status.Phase)
}

func podFlag(status string) entry.Flag {
	switch corev1.PodPhase(status) {
	case corev1.PodRunning, corev1.PodSucceeded:
		return entry.FlagGreen
	case corev1.PodPending:
		return entry.FlagBlue
	default:
		return entry.FlagRed
	}
}

func containerState(state corev1.ContainerState) string {
	switch {
	case state.Running != nil:
		return "Running"
	case state.Terminated != nil:
		return "Terminated"
	case state.Waiting != nil:
		return fmt.Sprintf("Waiting: %s", state.Waiting.Reason)
	default:
		return "Waiting"
	}
}

// Render shows an entry's summary, or its manifest or log in ModeDetail.
func Render(e *entry.Entry, mode entry.Mode) ([]graphic.Graphic, error) {
	var doc document
	if err := json.Unmarshal([]byte(e.Content), &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", e.DisplayTitle, err)
	}
	if mode != ModeDetail {
		return graphic.NewTextBox(doc.Summary, textSize, graphic.White, textBounds).Render(), nil
	}
	box := graphic.NewTextBox(doc.Detail, textSize, graphic.White, textBounds)
	if doc.Manifest {
		box = box.WithColorMap(highlightYAML(doc.Detail))
	}
	return box.Render(), nil
}
