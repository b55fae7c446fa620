package larder

const (
	// Name is the service name reported in logs and health checks
	Name = "larder"

	// Version is the service version, overridden at link time
	Version = "0.1.0"
)
