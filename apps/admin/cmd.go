package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"golang.org/x/term"

	"github.com/semsync/semsync/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db         *sql.DB // nil unless the postgres engine is configured
	usrSvc     *user.Service
	validate   *validator.Validate
	translator ut.Translator
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - run a goose command (up, down, status, redo, ...) on the postgres DB")
	fmt.Println("  adduser -name NAME -username USERNAME -email EMAIL - create an active user")
	fmt.Println("  resetpassword -username USERNAME|EMAIL - reset user's password")
	fmt.Println("  setactive -username USERNAME|EMAIL [-active=false] - activate or deactivate a user")
}

// promptPassword reads a password from the terminal without echoing it.
func promptPassword(label string) (string, error) {
	fmt.Printf("%s:", label)
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserName := addUserCmd.String("name", "", "The user's full name.")
	addUserUname := addUserCmd.String("username", "", "The user's username. Optional if email is set.")
	addUserEmail := addUserCmd.String("email", "", "The user's email. Optional if username is set.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordUname := resetPasswordCmd.String("username", "", "The user's username or email. The password will be prompted next.")

	setActiveCmd := flag.NewFlagSet("setactive", flag.ContinueOnError)
	setActiveUname := setActiveCmd.String("username", "", "The user's username or email.")
	setActiveValue := setActiveCmd.Bool("active", true, "Whether the user can log in.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserName == "" || (*addUserUname == "" && *addUserEmail == "") {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword("Enter password")
		if err != nil {
			return err
		}
		pwdConfirm, err := promptPassword("Confirm password")
		if err != nil {
			return err
		}
		return cli.addUser(user.NewUser{
			Name:            *addUserName,
			Username:        *addUserUname,
			Email:           *addUserEmail,
			Password:        pwd,
			PasswordConfirm: pwdConfirm,
		})

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordUname == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword("Enter password")
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordUname, pwd)

	case "setactive":
		if err := setActiveCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *setActiveUname == "" {
			setActiveCmd.Usage()
			return errHelp
		}
		return cli.setActive(*setActiveUname, *setActiveValue)

	default:
		cli.printUsage()
		return errHelp
	}
}
