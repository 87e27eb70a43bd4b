package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/semsync/semsync/core"
	"github.com/semsync/semsync/core/user"
)

// addUser validates nu like the register endpoint does, then creates an active user.User
func (cli *commandLine) addUser(nu user.NewUser) error {
	ctx := context.Background()
	if err := nu.Validate(ctx, cli.validate, cli.usrSvc); err != nil {
		return cli.translate(err)
	}
	usr, err := cli.usrSvc.Create(ctx, nu)
	if err != nil {
		return err
	}
	fmt.Printf("user %s created (id=%s)\n", usr.Name, usr.ID)
	return nil
}

// translate flattens validation errors into one readable error.
func (cli *commandLine) translate(err error) error {
	var fields map[string]string
	switch verr := errors.Cause(err).(type) {
	case validator.ValidationErrors:
		fields = core.TranslateErrors(verr, cli.translator)
	case *core.ValidationError:
		if len(verr.Fields) == 0 {
			return err
		}
		fields = make(map[string]string, len(verr.Fields))
		for _, fe := range verr.Fields {
			fields[fe.Field] = fe.Error
		}
	default:
		return err
	}

	msgs := make([]string, 0, len(fields))
	for field, msg := range fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, msg))
	}
	sort.Strings(msgs)
	return fmt.Errorf("invalid user: %s", strings.Join(msgs, "; "))
}
