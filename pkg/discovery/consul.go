package discovery

import (
	"fmt"
	"log"
	"strconv"

	"quiz-platform/internal/config"

	"github.com/hashicorp/consul/api"
)

type ServiceRegistry struct {
	client *api.Client
	server config.ServerConfig
}

func NewServiceRegistry(cfg *config.Config) (*ServiceRegistry, error) {
	consulConfig := api.DefaultConfig()
	consulConfig.Address = cfg.Consul.Address

	client, err := api.NewClient(consulConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Consul client: %w", err)
	}
	return &ServiceRegistry{client: client, server: cfg.Server}, nil
}

func (sr *ServiceRegistry) Register() error {
	reg, err := Registration(sr.server)
	if err != nil {
		return err
	}
	if err := sr.client.Agent().ServiceRegister(reg); err != nil {
		return fmt.Errorf("failed to register HTTP service with Consul: %w", err)
	}
	log.Printf("Registered %s with Consul as %s", reg.Name, reg.ID)
	return nil
}

func (sr *ServiceRegistry) Deregister() error {
	id := sr.server.ServiceID + "-http"
	if err := sr.client.Agent().ServiceDeregister(id); err != nil {
		return fmt.Errorf("failed to deregister %s: %w", id, err)
	}
	return nil
}

// Registration describes the HTTP endpoint with a /health check.
func Registration(server config.ServerConfig) (*api.AgentServiceRegistration, error) {
	port, err := strconv.Atoi(server.Port)
	if err != nil {
		return nil, fmt.Errorf("invalid port %q: %w", server.Port, err)
	}
	return &api.AgentServiceRegistration{
		ID:      server.ServiceID + "-http",
		Name:    server.ServiceName,
		Port:    port,
		Address: server.ServiceAddress,
		Check: &api.AgentServiceCheck{
			HTTP:     fmt.Sprintf("http://%s:%s/health", server.ServiceAddress, server.Port),
			Interval: "10s",
			Timeout:  "5s",
		},
		Tags: []string{"quiz", "http"},
		Meta: map[string]string{"protocol": "http"},
	}, nil
}
