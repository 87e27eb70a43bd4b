package logsvc

import (
	"log"
	"strings"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/semsync/semsync/core"
	"github.com/semsync/semsync/core/user"
)

// RollbarLogger writes to a std logger and reports to Rollbar when enabled.
type RollbarLogger struct {
	std *log.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(strings.ToLower(conf.Env))
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	return &RollbarLogger{std: std}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// report sends msg & args to Rollbar.
// args: error | map[string]interface{} (extras) | user.User (the first one becomes the Rollbar person)
func (l RollbarLogger) report(level, msg string, args []interface{}) {
	var person *user.User
	items := make([]interface{}, 0, len(args)+1)
	items = append(items, msg)
	for _, arg := range args {
		if usr, ok := arg.(user.User); ok {
			if person == nil {
				person = &usr
			}
			continue
		}
		items = append(items, arg)
	}
	if person != nil && person.ID != "" {
		rollbar.SetPerson(person.ID, person.Username, person.Email)
	} else {
		rollbar.ClearPerson()
	}
	rollbar.Log(level, items...)
}

func (l RollbarLogger) print(level, msg string, args []interface{}) {
	l.std.Printf("%s %s", strings.ToUpper(level), msg)
	for _, arg := range args {
		switch v := arg.(type) {
		case user.User:
			l.std.Printf("\tuser: id=%s username=%q email=%q", v.ID, v.Username, v.Email)
		case error:
			l.std.Printf("\t%+v", v)
		default:
			l.std.Printf("\t%v", v)
		}
	}
}

func (l RollbarLogger) log(level, msg string, args []interface{}) {
	l.report(level, msg, args)
	l.print(level, msg, args)
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) { l.log(rollbar.DEBUG, msg, args) }
func (l RollbarLogger) Info(msg string, args ...interface{})  { l.log(rollbar.INFO, msg, args) }
func (l RollbarLogger) Warn(msg string, args ...interface{})  { l.log(rollbar.WARN, msg, args) }
func (l RollbarLogger) Error(msg string, args ...interface{}) { l.log(rollbar.ERR, msg, args) }

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.log(rollbar.CRIT, msg, args)
	rollbar.Wait()
	l.std.Fatal(msg)
}
