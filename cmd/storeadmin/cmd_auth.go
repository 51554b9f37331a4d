package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/afandal/storeadmin/app/services"
)

// storeadmin login --email --password
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with the admin email and password",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		c, err := bootCLI()
		if err != nil {
			return err
		}
		token, err := c.svc.Auth.Login(cmd.Context(), services.Credentials{Email: email, Password: password})
		if err != nil {
			return err
		}
		if err := c.sess.Set(token); err != nil {
			return err
		}
		fmt.Fprintln(c.out, "Logged in.")
		return nil
	},
}

// storeadmin otp:send --email
var otpSendCmd = &cobra.Command{
	Use:   "otp:send",
	Short: "Email a one-time login code",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")

		c, err := bootCLI()
		if err != nil {
			return err
		}
		msg, err := c.svc.Auth.SendOTP(cmd.Context(), services.OTPRequest{Email: email})
		if err != nil {
			return err
		}
		fmt.Fprintln(c.out, msg)
		return nil
	},
}

// storeadmin otp:verify --email --code
var otpVerifyCmd = &cobra.Command{
	Use:   "otp:verify",
	Short: "Log in with a one-time code",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		code, _ := cmd.Flags().GetString("code")

		c, err := bootCLI()
		if err != nil {
			return err
		}
		token, err := c.svc.Auth.VerifyOTP(cmd.Context(), services.OTPVerification{Email: email, OTP: code})
		if err != nil {
			return err
		}
		if err := c.sess.Set(token); err != nil {
			return err
		}
		fmt.Fprintln(c.out, "Logged in.")
		return nil
	},
}

// storeadmin logout
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored credential",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := bootCLI()
		if err != nil {
			return err
		}
		c.svc.Auth.Logout(cmd.Context(), c.sess)
		fmt.Fprintln(c.out, "Logged out.")
		return nil
	},
}

func init() {
	loginCmd.Flags().String("email", "", "Admin email")
	loginCmd.Flags().String("password", "", "Admin password")
	otpSendCmd.Flags().String("email", "", "Admin email")
	otpVerifyCmd.Flags().String("email", "", "Admin email")
	otpVerifyCmd.Flags().String("code", "", "Code received by email")
}
