package kube

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"time"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// newClientset connects to the cluster of the named kubeconfig context, or
// of the current context when name is empty. Inside a pod the in-cluster
// config wins over the kubeconfig unless a context is named.
func newClientset(contextName string) (kubernetes.Interface, error) {
	config, err := restConfig(contextName)
	if err != nil {
		return nil, fmt.Errorf("failed to get kubeconfig: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}
	return clientset, nil
}

func restConfig(contextName string) (*rest.Config, error) {
	if contextName == "" {
		if config, err := rest.InClusterConfig(); err == nil {
			return config, nil
		}
	}

	// Honours KUBECONFIG, falling back to ~/.kube/config.
	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	overrides := &clientcmd.ConfigOverrides{CurrentContext: contextName}
	return clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, overrides).ClientConfig()
}

// containerLogs returns the last tailLines lines of a container's log,
// numbered from 1.
func containerLogs(ctx context.Context, cs kubernetes.Interface, namespace, pod, container string, tailLines int64) (string, error) {
	req := cs.CoreV1().Pods(namespace).GetLogs(pod, &corev1.PodLogOptions{
		Container: container,
		TailLines: &tailLines,
	})
	stream, err := req.Stream(ctx)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = stream.Close()
	}()

	var sb strings.Builder
	scanner := bufio.NewScanner(stream)
	lineNum := 1
	for scanner.Scan() {
		if lineNum > 1 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%4d: %s", lineNum, scanner.Text())
		lineNum++
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	if lineNum == 1 {
		return "(no logs)", nil
	}
	return sb.String(), nil
}

// FormatAge formats the time since t the way kubectl's AGE column does,
// in its largest whole unit.
func FormatAge(now, t time.Time) string {
	d := now.Sub(t)

	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 48*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}
