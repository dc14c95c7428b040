// Package recipes defines the built-in provisioning pipelines for the three
// default roles and the validation probes matching the services they
// install. Pipelines are plain orchestrator values; callers with custom
// roles can build their own the same way.
package recipes

import (
	"context"
	"strings"

	"github.com/samber/lo"

	"github.com/ostler-dev/ostler/orchestrator"
	"github.com/ostler-dev/ostler/probe"
)

const (
	RoleApplication orchestrator.Role = "application"
	RoleCI          orchestrator.Role = "ci"
	RoleMonitoring  orchestrator.Role = "monitoring"
)

// Roles returns the built-in roles in positional binding order: explicit
// address arguments map to roles in this order.
func Roles() []orchestrator.Role {
	return []orchestrator.Role{RoleApplication, RoleCI, RoleMonitoring}
}

// Pipelines builds the pipeline for every built-in role. The full host list
// is needed because the monitoring role scrapes every host.
func Pipelines(hosts []*orchestrator.Host) map[orchestrator.Role]*orchestrator.Pipeline {
	targets := lo.Map(hosts, func(host *orchestrator.Host, _ int) string { return host.Address })

	return map[orchestrator.Role]*orchestrator.Pipeline{
		RoleApplication: {
			Role: RoleApplication,
			Steps: []orchestrator.Step{
				installDocker(),
				runNodeExporter(),
				{
					Name: "run-application",
					Action: func(ctx context.Context, s *orchestrator.Session) error {
						return runContainer(ctx, s, container{
							Name:  "app-web",
							Image: "nginx:stable",
							Ports: []string{"80:80"},
						})
					},
				},
				waitForEndpoint("check-application", "application", "http://127.0.0.1:80/", 15, 2),
			},
		},

		RoleCI: {
			Role: RoleCI,
			Steps: []orchestrator.Step{
				installDocker(),
				runNodeExporter(),
				{
					Name: "run-jenkins",
					Action: func(ctx context.Context, s *orchestrator.Session) error {
						return runContainer(ctx, s, container{
							Name:    "jenkins",
							Image:   "jenkins/jenkins:lts",
							Ports:   []string{"8080:8080", "50000:50000"},
							Volumes: []string{"jenkins_home:/var/jenkins_home"},
						})
					},
				},
				// Jenkins unpacks itself on first boot, so the budget is generous
				waitForEndpoint("check-jenkins", "jenkins", "http://127.0.0.1:8080/login", 60, 5),
			},
		},

		RoleMonitoring: {
			Role: RoleMonitoring,
			Steps: []orchestrator.Step{
				installDocker(),
				runNodeExporter(),
				installZstd(),
				{
					Name: "push-prometheus-config",
					Action: func(ctx context.Context, s *orchestrator.Session) error {
						config := prometheusConfig(targets)
						if err := s.Push(ctx, strings.NewReader(config), "/tmp/ostler/prometheus.yml", orchestrator.TransferOptions{Compress: true}); err != nil {
							return err
						}
						_, err := s.Run(ctx, "sudo install -D -m 0644 /tmp/ostler/prometheus.yml /opt/ostler/prometheus.yml")
						return err
					},
				},
				{
					Name: "run-prometheus",
					Action: func(ctx context.Context, s *orchestrator.Session) error {
						return runContainer(ctx, s, container{
							Name:    "prometheus",
							Image:   "prom/prometheus:latest",
							Ports:   []string{"9090:9090"},
							Volumes: []string{"/opt/ostler/prometheus.yml:/etc/prometheus/prometheus.yml:ro"},
						})
					},
				},
				{
					Name: "run-grafana",
					Action: func(ctx context.Context, s *orchestrator.Session) error {
						return runContainer(ctx, s, container{
							Name:  "grafana",
							Image: "grafana/grafana-oss:latest",
							Ports: []string{"3000:3000"},
						})
					},
				},
				waitForEndpoint("check-prometheus", "prometheus", "http://127.0.0.1:9090/-/healthy", 15, 2),
			},
		},
	}
}

// Probes returns the default validation probes for the given hosts: the
// role's service endpoints plus, for every host, the node exporter port and
// a Docker daemon ping through the SSH tunnel.
func Probes(hosts []*orchestrator.Host) []probe.Probe {
	var probes []probe.Probe
	for _, host := range hosts {
		probes = append(probes,
			probe.Probe{Host: host, Kind: probe.KindDocker},
			probe.Probe{Host: host, Kind: probe.KindTCP, Port: 9100},
		)

		switch host.Role {
		case RoleApplication:
			probes = append(probes, probe.Probe{Host: host, Kind: probe.KindHTTP, Port: 80, Path: "/"})
		case RoleCI:
			probes = append(probes, probe.Probe{Host: host, Kind: probe.KindHTTP, Port: 8080, Path: "/login"})
		case RoleMonitoring:
			probes = append(probes,
				probe.Probe{Host: host, Kind: probe.KindHTTP, Port: 9090, Path: "/-/healthy"},
				probe.Probe{Host: host, Kind: probe.KindHTTP, Port: 3000, Path: "/api/health"},
			)
		}
	}
	return probes
}
