// Package notify shows the "recording ready" message and hands saved
// recordings to the local desktop.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/gen2brain/beeep"

	"github.com/devbydaniel/voicemsg/internal/domain/voice"
	"github.com/devbydaniel/voicemsg/internal/output"
)

// Desktop raises a system notification.
type Desktop struct {
	send func(title, message, icon string) error
}

func NewDesktop() *Desktop {
	return &Desktop{send: func(title, message, icon string) error {
		return beeep.Notify(title, message, icon)
	}}
}

func (d *Desktop) Notify(title, message string) error {
	if err := d.send(title, message, ""); err != nil {
		return fmt.Errorf("desktop notification: %w", err)
	}
	return nil
}

// Console prints the notification through the formatter.
type Console struct {
	Formatter *output.Formatter
}

func (c *Console) Notify(title, message string) error {
	c.Formatter.Notification(title, message)
	return nil
}

// Notifier is satisfied by every notifier in this package.
type Notifier interface {
	Notify(title, message string) error
}

// Multi notifies every target and joins their errors.
type Multi []Notifier

func (m Multi) Notify(title, message string) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(title, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Clipboard copies the saved file path so it can be pasted into a file
// dialog.
type Clipboard struct {
	write func(string) error
}

func NewClipboard() *Clipboard {
	return &Clipboard{write: clipboard.WriteAll}
}

func (c *Clipboard) Attach(_ context.Context, artifact *voice.Artifact) error {
	if artifact.Path == "" {
		return errors.New("recording has not been saved")
	}
	if err := c.write(artifact.Path); err != nil {
		return fmt.Errorf("copying path to clipboard: %w", err)
	}
	return nil
}
