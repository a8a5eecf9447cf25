// Package notify models the platform notification collaborator: a
// permission state owned by the platform and a send call that degrades
// to a log line when permission has not been granted.
package notify

import (
	"go.uber.org/zap"
)

// Permission is the platform notification permission state.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// Prompter asks the platform (or the user) to grant notification
// permission. It is only consulted while the permission is "default".
type Prompter interface {
	// RequestPermission returns the permission the platform decided on.
	RequestPermission() Permission
}

// PrompterFunc adapts a function to the Prompter interface.
type PrompterFunc func() Permission

func (f PrompterFunc) RequestPermission() Permission { return f() }

// Service tracks the notification permission and delivers notifications,
// falling back to a log line when not granted.
type Service struct {
	permission Permission
	prompter   Prompter
	log        *zap.Logger
}

// New returns a Service starting from the given permission state.
func New(permission Permission, prompter Prompter, log *zap.Logger) *Service {
	if permission == "" {
		permission = PermissionDefault
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{permission: permission, prompter: prompter, log: log}
}

// Permission returns the current permission state.
func (s *Service) Permission() Permission {
	return s.permission
}

// Request resolves the permission. Granted and denied are sticky; only
// the default state consults the prompter. Without a prompter the
// request is denied.
func (s *Service) Request() Permission {
	if s.permission != PermissionDefault {
		return s.permission
	}
	if s.prompter == nil {
		s.log.Warn("notifications not supported, denying permission")
		s.permission = PermissionDenied
		return s.permission
	}
	s.permission = s.prompter.RequestPermission()
	return s.permission
}

// Send delivers a notification. When permission is not granted the send
// is a no-op observable only as a log line.
func (s *Service) Send(title, body string) {
	if s.permission != PermissionGranted {
		s.log.Info("notification fallback",
			zap.String("title", title),
			zap.String("body", body),
		)
		return
	}
	s.log.Info("notification sent",
		zap.String("title", title),
		zap.String("body", body),
	)
}
