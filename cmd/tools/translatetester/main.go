package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/b4babl/backend/internal/config"
	"github.com/b4babl/backend/internal/service/speech"
	"github.com/b4babl/backend/internal/service/translate"
)

// Manual tester for the translation gateway and the TTS client. Run with
// real credentials in the environment to exercise the external services
// without starting the API.
func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: could not load .env, using system environment: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	text := flag.String("text", "Hello world.", "text to translate")
	source := flag.String("source", "English", "source language")
	target := flag.String("target", "Spanish", "target language")
	voice := flag.String("voice", "", "TTS voice id; empty skips synthesis")
	out := flag.String("out", "out.mp3", "TTS output file")
	timeout := flag.Duration("timeout", 45*time.Second, "request timeout")

	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var gateway translate.Gateway = translate.NewStaticGateway(nil)
	if cfg.AI.Enabled() {
		chatModel, err := cfg.AI.NewChatModel(ctx)
		if err != nil {
			log.Fatalf("failed to initialize chat model: %v", err)
		}
		gateway, err = translate.NewArkGateway(ctx, chatModel)
		if err != nil {
			log.Fatalf("failed to build translation gateway: %v", err)
		}
	} else {
		log.Println("Ark credentials not configured, using the static gateway")
	}

	translated, err := gateway.Translate(ctx, *text, *source, *target)
	if err != nil {
		log.Fatalf("translation failed: %v", err)
	}
	fmt.Printf("%s -> %s: %s\n", *source, *target, translated)

	if *voice == "" {
		return
	}
	if !cfg.Speech.Enabled {
		log.Fatal("speech credentials not configured, cannot synthesize")
	}

	client := speech.NewWSClient(speech.Config{
		BaseURL:     cfg.Speech.BaseURL,
		AppID:       cfg.Speech.AppID,
		AccessToken: cfg.Speech.AccessToken,
		Voice:       cfg.Speech.Voice,
		Format:      cfg.Speech.Format,
		Timeout:     cfg.Speech.Timeout,
	})

	resp, err := client.Synthesize(ctx, speech.Request{Text: translated, Voice: *voice})
	if err != nil {
		log.Fatalf("synthesis failed: %v", err)
	}
	if err := os.WriteFile(*out, resp.Audio, 0o644); err != nil {
		log.Fatalf("failed to write %s: %v", *out, err)
	}
	fmt.Printf("wrote %d bytes of %s audio to %s\n", len(resp.Audio), resp.Format, *out)
}
