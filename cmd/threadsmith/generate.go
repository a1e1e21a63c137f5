package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/abdulachik/threadsmith/internal/app"
	"github.com/abdulachik/threadsmith/internal/config"
	"github.com/abdulachik/threadsmith/internal/db"
	"github.com/abdulachik/threadsmith/internal/generator"
	"github.com/spf13/cobra"
)

var (
	genProvider  string
	genPermalink string
	genText      string
	genStyle     string
	genHook      string
	genEmojis    bool
	genHashtags  bool
	genModel     string
	genEffort    string
	genVerbosity string
	genNoSave    bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a post and image prompt",
	Long: `Generate a LinkedIn-style post and an image prompt from a Reddit thread
or from raw text, and save the result as a draft.

Examples:
  threadsmith generate --permalink /r/golang/comments/abc123/why_go/ --style storytelling --hook question
  threadsmith generate --provider openai --model gpt-5 --text "notes.txt contents" --style listicle --hook stat
  threadsmith generate --permalink /r/x/comments/y/ --style casual --hook bold --no-save`,
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.StringVar(&genProvider, "provider", generator.ProviderClaude, "Generator: claude or openai")
	f.StringVar(&genPermalink, "permalink", "", "Reddit thread to generate from")
	f.StringVar(&genText, "text", "", "Source text (used instead of --permalink)")
	f.StringVar(&genStyle, "style", "", "Post style")
	f.StringVar(&genHook, "hook", "", "Opening hook")
	f.BoolVar(&genEmojis, "emojis", false, "Allow emojis")
	f.BoolVar(&genHashtags, "hashtags", false, "Add hashtags")
	f.StringVar(&genModel, "model", "", "OpenAI model override")
	f.StringVar(&genEffort, "effort", "", "OpenAI reasoning effort")
	f.StringVar(&genVerbosity, "verbosity", "", "OpenAI verbosity")
	f.BoolVar(&genNoSave, "no-save", false, "Do not save the result to draft history")
	_ = generateCmd.MarkFlagRequired("style")
	_ = generateCmd.MarkFlagRequired("hook")
	generateCmd.MarkFlagsMutuallyExclusive("permalink", "text")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.ValidateForGeneration(genProvider); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	if genPermalink == "" && strings.TrimSpace(genText) == "" {
		return fmt.Errorf("one of --permalink or --text is required")
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	text := genText
	if genPermalink != "" {
		thread, err := a.Reddit.FetchThread(ctx, genPermalink)
		if err != nil {
			return fmt.Errorf("fetch thread: %w", err)
		}
		text = generator.ComposeThreadText(thread, generator.DefaultPromptComments)
	}

	gen, err := a.Generator(genProvider)
	if err != nil {
		return err
	}

	slog.Info("generating post", "provider", genProvider, "permalink", genPermalink)
	result, err := gen.Generate(ctx, generator.Request{
		Style:           genStyle,
		Hook:            genHook,
		Text:            text,
		UseEmojis:       genEmojis,
		UseHashtags:     genHashtags,
		Model:           genModel,
		ReasoningEffort: genEffort,
		Verbosity:       genVerbosity,
	})
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	if !generator.FitsInLimit(result.Post, generator.LinkedInMaxLength) {
		fmt.Fprintf(os.Stderr, "warning: post is %d characters, over the %d character limit\n",
			len([]rune(result.Post)), generator.LinkedInMaxLength)
	}

	fmt.Println(result.Post)
	fmt.Println()
	fmt.Println("Image prompt:")
	fmt.Println(result.ImagePrompt)

	if genNoSave {
		return nil
	}

	draft, err := a.Store.CreateDraft(ctx, db.CreateDraftParams{
		Permalink:   genPermalink,
		Provider:    result.Provider,
		Model:       result.Model,
		Style:       genStyle,
		Hook:        genHook,
		PostText:    result.Post,
		ImagePrompt: result.ImagePrompt,
	})
	if err != nil {
		return fmt.Errorf("save draft: %w", err)
	}

	fmt.Printf("\nSaved draft %s\n", draft.ID)
	return nil
}
