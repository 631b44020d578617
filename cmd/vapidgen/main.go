// Command vapidgen prints a fresh VAPID key pair in .env format.
package main

import (
	"fmt"

	"github.com/SherClockHolmes/webpush-go"
	log "github.com/sirupsen/logrus"
)

func main() {
	privateKey, publicKey, err := webpush.GenerateVAPIDKeys()
	if err != nil {
		log.WithError(err).Fatal("Failed to generate VAPID keys")
	}

	fmt.Println("# Add these to your .env file")
	fmt.Printf("VAPID_PUBLIC_KEY=%s\n", publicKey)
	fmt.Printf("VAPID_PRIVATE_KEY=%s\n", privateKey)
	fmt.Println("VAPID_SUBJECT=mailto:admin@metawall.dev")
}
