package recipes

import (
	"context"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"
	"github.com/samber/lo"

	"github.com/ostler-dev/ostler/orchestrator"
)

// installDocker installs the container runtime every role builds on.
// Already-provisioned hosts pass straight through the command -v guard.
func installDocker() orchestrator.Step {
	return orchestrator.Step{
		Name: "install-docker",
		Action: func(ctx context.Context, s *orchestrator.Session) error {
			if _, err := s.Run(ctx, "command -v docker >/dev/null 2>&1 || curl -fsSL https://get.docker.com | sudo sh"); err != nil {
				return err
			}
			_, err := s.Run(ctx, "sudo systemctl enable --now docker")
			return err
		},
	}
}

// installZstd is needed before any compressed file transfer to the host.
func installZstd() orchestrator.Step {
	return orchestrator.Step{
		Name: "install-zstd",
		Action: func(ctx context.Context, s *orchestrator.Session) error {
			_, err := s.Run(ctx, "command -v zstd >/dev/null 2>&1 || (sudo apt-get update --quiet && sudo apt-get install --yes zstd)")
			return err
		},
	}
}

func runNodeExporter() orchestrator.Step {
	return orchestrator.Step{
		Name: "run-node-exporter",
		Action: func(ctx context.Context, s *orchestrator.Session) error {
			return runContainer(ctx, s, container{
				Name:  "node-exporter",
				Image: "prom/node-exporter:latest",
				Ports: []string{"9100:9100"},
			})
		},
	}
}

type container struct {
	Name    string
	Image   string
	Ports   []string
	Volumes []string
}

// The force-remove in front makes the step idempotent: a container left by
// a previous run is replaced instead of tripping a name conflict.
var containerTemplate = template.Must(template.New("container").Funcs(sprig.TxtFuncMap()).Parse(strings.Join([]string{
	"sudo docker rm --force {{ .Name | squote }} >/dev/null 2>&1 || true",
	" && sudo docker run --detach --name {{ .Name | squote }} --restart unless-stopped",
	"{{- range .Ports }} --publish {{ . | squote }}{{ end }}",
	"{{- range .Volumes }} --volume {{ . | squote }}{{ end }}",
	" {{ .Image | squote }}",
}, "")))

func runContainer(ctx context.Context, s *orchestrator.Session, c container) error {
	_, err := s.Run(ctx, render(containerTemplate, c))
	return err
}

// waitForEndpoint builds a step that polls a local endpoint on the host
// until it answers. This is part of the step itself (an explicit health
// check), not a retry of the step.
func waitForEndpoint(stepName, service, url string, attempts, intervalSeconds int) orchestrator.Step {
	command := render(waitTemplate, struct {
		Service  string
		URL      string
		Attempts int
		Interval int
	}{service, url, attempts, intervalSeconds})

	return orchestrator.Step{
		Name: stepName,
		Action: func(ctx context.Context, s *orchestrator.Session) error {
			_, err := s.Run(ctx, command)
			return err
		},
	}
}

var waitTemplate = template.Must(template.New("wait").Funcs(sprig.TxtFuncMap()).Parse(
	`for i in $(seq 1 {{ .Attempts }}); do curl -fsS --max-time 5 {{ .URL | squote }} >/dev/null 2>&1 && exit 0; sleep {{ .Interval }}; done; echo {{ printf "%s did not answer at %s" .Service .URL | squote }} >&2; exit 1`,
))

var prometheusTemplate = template.Must(template.New("prometheus").Funcs(sprig.TxtFuncMap()).Parse(`global:
  scrape_interval: 15s

scrape_configs:
  - job_name: "node"
    static_configs:
      - targets:
{{- range .Targets }}
          - {{ printf "%s:9100" . | quote }}
{{- end }}
  - job_name: "prometheus"
    static_configs:
      - targets: ["127.0.0.1:9090"]
`))

func prometheusConfig(targets []string) string {
	return render(prometheusTemplate, struct{ Targets []string }{targets})
}

func render(tmpl *template.Template, data any) string {
	var buf strings.Builder
	lo.Must0(tmpl.Execute(&buf, data))
	return buf.String()
}
