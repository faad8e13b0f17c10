package utils

import "github.com/akeren/gatherly-web/pkg/constants"

func IsTracingEnabled() bool {
	return GetEnvBool("OTEL_TRACES_ENABLED", false)
}

func OTelServiceName() string {
	return GetEnvTrimmedOrDefault("OTEL_SERVICE_NAME", constants.ServiceName)
}
