package awsecs

import (
	"fmt"
	"strings"
)

const (
	commercialConsoleHost = "console.aws.amazon.com"
	chinaConsoleHost      = "console.amazonaws.cn"
)

// ConsoleHost picks the console endpoint for a region. Regions in the
// cn- partition live under a separate domain.
func ConsoleHost(region string) string {
	if strings.HasPrefix(region, "cn") {
		return chinaConsoleHost
	}
	return commercialConsoleHost
}

// ClusterTasksURL is the console view of the cluster's task list, logged
// on a successful launch so the run links straight to its tasks.
func ClusterTasksURL(region, cluster string) string {
	return fmt.Sprintf("https://%s/ecs/home?region=%s#/clusters/%s/tasks",
		ConsoleHost(region), region, cluster)
}
