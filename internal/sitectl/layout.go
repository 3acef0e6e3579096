package sitectl

import (
	"path"
)

const (
	nginxAvailableDir = "/etc/nginx/sites-available"
	nginxEnabledDir   = "/etc/nginx/sites-enabled"
	systemdUnitDir    = "/etc/systemd/system"

	proxyService = "nginx"
)

// Layout derives every remote path and service name from the deploy user and
// the application name.
type Layout struct {
	App    string
	User   string
	Home   string
	Worker string
}

func (l Layout) home() string {
	if l.Home != "" {
		return l.Home
	}
	return path.Join("/home", l.User)
}

func (l Layout) siteName(t Target) string {
	return l.App + "-" + t.Host
}

// SiteDir is the working copy root for t.
func (l Layout) SiteDir(t Target) string {
	return path.Join(l.home(), "sites", l.siteName(t))
}

func (l Layout) EnvFile(t Target) string {
	return path.Join(l.SiteDir(t), ".env")
}

func (l Layout) VirtualenvDir(t Target) string {
	return path.Join(l.SiteDir(t), "virtualenv")
}

func (l Layout) Requirements(t Target) string {
	return path.Join(l.SiteDir(t), "requirements.txt")
}

// NginxAvailable is the rendered site config location.
func (l Layout) NginxAvailable(t Target) string {
	return path.Join(nginxAvailableDir, l.siteName(t))
}

// NginxEnabled is the symlink that makes t the served site.
func (l Layout) NginxEnabled(t Target) string {
	return path.Join(nginxEnabledDir, l.siteName(t))
}

// Unit is the systemd unit name of t's worker.
func (l Layout) Unit(t Target) string {
	return l.Worker + "-" + l.siteName(t)
}

func (l Layout) UnitFile(t Target) string {
	return path.Join(systemdUnitDir, l.Unit(t)+".service")
}
