package functionRuntimeInterface

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultAddress = "0.0.0.0:50052"
	DefaultTimeout = 120 * time.Second
)

// Settings is the runtime configuration of a function instance. LoadSettings reads it from
// the environment the worker sets up; CLI flags may override fields afterwards.
type Settings struct {
	FunctionID     string
	InstanceID     string
	Handler        string
	Address        string
	MetricsAddress string
	// Timeout is how long the instance may stay idle before it shuts down. Zero disables it.
	Timeout       time.Duration
	EtcdEndpoints []string
}

func LoadSettings(logger *slog.Logger) Settings {
	s := Settings{
		Address:    DefaultAddress,
		Timeout:    DefaultTimeout,
		InstanceID: instanceID(),
	}

	if v, ok := os.LookupEnv("FUNCTION_ID"); ok {
		s.FunctionID = v
	} else {
		logger.Warn("Environment variable FUNCTION_ID not found")
	}
	if v, ok := os.LookupEnv("FUNCTION_HANDLER"); ok {
		s.Handler = v
	}
	if v, ok := os.LookupEnv("FUNCTION_ADDRESS"); ok && v != "" {
		s.Address = v
	}
	if v, ok := os.LookupEnv("METRICS_ADDRESS"); ok {
		s.MetricsAddress = v
	}
	if v, ok := os.LookupEnv("FUNCTION_TIMEOUT"); ok {
		secs, err := strconv.Atoi(v)
		if err != nil || secs < 0 {
			logger.Warn("Ignoring invalid FUNCTION_TIMEOUT", "value", v)
		} else {
			s.Timeout = time.Duration(secs) * time.Second
		}
	}
	if v, ok := os.LookupEnv("ETCD_ENDPOINTS"); ok && v != "" {
		s.EtcdEndpoints = strings.Split(v, ",")
	}

	return s
}

// instanceID is the container hostname, which the worker sets to the instance id.
func instanceID() string {
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		return uuid.NewString()
	}
	return hostname
}
