package livedocx

import (
	"context"
	"errors"

	"github.com/zeptools/gw-livedocx/apis/livedocx/soap"
)

// Login authenticates the session. A SOAP fault becomes ErrAuthentication;
// any other transport error is returned unchanged
func (c *Client) Login(ctx context.Context, username string, password string) error {
	err := c.svc.LogIn(ctx, username, password)
	var fault *soap.Fault
	if errors.As(err, &fault) {
		c.logger.Debugw("login rejected", "username", username, "fault", fault.String)
		return newError(ErrAuthentication, "invalid username/password combination")
	}
	return err
}

func (c *Client) Logout(ctx context.Context) error {
	return c.svc.LogOut(ctx)
}

// SetIgnoreSubTemplates turns off merging of INCLUDETEXT sub-templates for this session
func (c *Client) SetIgnoreSubTemplates(ctx context.Context) error {
	return c.svc.SetIgnoreSubTemplates(ctx)
}

// Session logs in, runs fn, and logs out on every exit path.
// A logout error is joined with fn's error. No logout is attempted when login fails
func (c *Client) Session(ctx context.Context, username string, password string, fn func(ctx context.Context, c *Client) error) (err error) {
	if err = c.Login(ctx, username, password); err != nil {
		return err
	}
	defer func() {
		// logout must reach the server even when ctx is already canceled
		logoutErr := c.Logout(context.WithoutCancel(ctx))
		if logoutErr != nil {
			c.logger.Warnw("logout failed", "error", logoutErr)
			err = errors.Join(err, logoutErr)
		}
	}()
	return fn(ctx, c)
}
