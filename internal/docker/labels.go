package docker

import "strings"

// Label keys shoal reads from containers
const (
	// LabelNamespace prefixes every label carrying shoal configuration
	LabelNamespace = "shoal."

	// LabelInstanceName names the instance whose Redis namespace the container belongs to.
	// It is not a configuration key and is never passed on as one.
	LabelInstanceName = "shoal.instance.name"
)

// ConfigLabels returns the labels that carry shoal configuration.
// Labels outside the namespace and LabelInstanceName are dropped.
func ConfigLabels(labels map[string]string) map[string]string {
	config := make(map[string]string)
	for k, v := range labels {
		if !strings.HasPrefix(k, LabelNamespace) || k == LabelInstanceName {
			continue
		}
		config[k] = v
	}
	return config
}

// InstanceName returns the instance named by the container's labels, or "".
func InstanceName(labels map[string]string) string {
	return strings.TrimSpace(labels[LabelInstanceName])
}
