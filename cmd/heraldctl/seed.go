package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"basegraph.app/herald/common/id"
	"basegraph.app/herald/core/config"
	"basegraph.app/herald/core/db"
	"basegraph.app/herald/internal/model"
	"basegraph.app/herald/internal/service"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create realms, streams, users and bots from a YAML file",
	Long: `Create realms, streams, users and bots described in a YAML seed file.
Everything is created in one transaction. Bots without an api_key get a
generated one, printed once.

Example:
  heraldctl seed --file deploy/seed.example.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		data, err := os.ReadFile(seedFile)
		if err != nil {
			return fmt.Errorf("reading seed file: %w", err)
		}
		seed, err := parseSeed(data)
		if err != nil {
			return err
		}

		cfg, err := config.Load(config.ServiceTypeCLI)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if err := id.Init(id.NodeCLI); err != nil {
			return err
		}

		database, err := db.New(ctx, cfg.DB)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()

		return applySeed(ctx, service.NewTxRunner(database), seed, cfg.Messaging.NotificationBotEmail, cmd.OutOrStdout())
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "Seed YAML file")
	_ = seedCmd.MarkFlagRequired("file")
}

type SeedFile struct {
	Realms []SeedRealm `yaml:"realms"`
}

type SeedRealm struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
	// ModerationStream names one of Streams; reports are disabled when empty.
	ModerationStream string       `yaml:"moderation_stream"`
	Streams          []SeedStream `yaml:"streams"`
	Users            []SeedUser   `yaml:"users"`
}

type SeedStream struct {
	Name         string `yaml:"name"`
	TopicsPolicy string `yaml:"topics_policy"`
}

type SeedUser struct {
	FullName      string `yaml:"full_name"`
	Email         string `yaml:"email"`
	APIKey        string `yaml:"api_key"`
	Bot           bool   `yaml:"bot"`
	Owner         string `yaml:"owner"`
	DefaultStream string `yaml:"default_stream"`
}

func parseSeed(data []byte) (*SeedFile, error) {
	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}
	if len(seed.Realms) == 0 {
		return nil, fmt.Errorf("seed file defines no realms")
	}
	for i, realm := range seed.Realms {
		if err := realm.validate(); err != nil {
			return nil, fmt.Errorf("realm %d (%q): %w", i, realm.Name, err)
		}
	}
	return &seed, nil
}

func (r SeedRealm) validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name is required")
	}

	streams := make(map[string]bool, len(r.Streams))
	for _, s := range r.Streams {
		key := strings.ToLower(s.Name)
		if key == "" {
			return fmt.Errorf("stream name is required")
		}
		if streams[key] {
			return fmt.Errorf("duplicate stream %q", s.Name)
		}
		if s.TopicsPolicy != "" && !model.TopicsPolicy(s.TopicsPolicy).IsValid() {
			return fmt.Errorf("stream %q: invalid topics_policy %q", s.Name, s.TopicsPolicy)
		}
		streams[key] = true
	}
	if r.ModerationStream != "" && !streams[strings.ToLower(r.ModerationStream)] {
		return fmt.Errorf("moderation_stream %q is not defined", r.ModerationStream)
	}

	emails := make(map[string]bool, len(r.Users))
	for _, u := range r.Users {
		key := strings.ToLower(u.Email)
		if key == "" {
			return fmt.Errorf("user email is required")
		}
		if emails[key] {
			return fmt.Errorf("duplicate user %q", u.Email)
		}
		if u.DefaultStream != "" && !streams[strings.ToLower(u.DefaultStream)] {
			return fmt.Errorf("user %q: default_stream %q is not defined", u.Email, u.DefaultStream)
		}
		if u.Owner != "" {
			if !u.Bot {
				return fmt.Errorf("user %q: only bots have an owner", u.Email)
			}
			// Owners must be listed before the bots they own.
			if !emails[strings.ToLower(u.Owner)] {
				return fmt.Errorf("bot %q: owner %q must be defined before it", u.Email, u.Owner)
			}
		}
		emails[key] = true
	}
	return nil
}

func applySeed(ctx context.Context, txRunner service.TxRunner, seed *SeedFile, notificationBotEmail string, out io.Writer) error {
	return txRunner.WithTx(ctx, func(stores service.StoreProvider) error {
		for _, r := range seed.Realms {
			if err := seedRealm(ctx, stores, r, notificationBotEmail, out); err != nil {
				return fmt.Errorf("seeding realm %q: %w", r.Name, err)
			}
		}
		return nil
	})
}

func seedRealm(ctx context.Context, stores service.StoreProvider, r SeedRealm, notificationBotEmail string, out io.Writer) error {
	realm := &model.Realm{ID: id.New(), Name: r.Name, URL: r.URL}
	if err := stores.Realms().Create(ctx, realm); err != nil {
		return fmt.Errorf("creating realm: %w", err)
	}
	fmt.Fprintf(out, "realm %q: id=%d\n", realm.Name, realm.ID)

	streams := make(map[string]*model.Stream, len(r.Streams))
	for _, s := range r.Streams {
		stream := &model.Stream{
			ID:           id.New(),
			RealmID:      realm.ID,
			Name:         s.Name,
			TopicsPolicy: model.TopicsPolicy(s.TopicsPolicy),
		}
		if stream.TopicsPolicy == "" {
			stream.TopicsPolicy = model.TopicsPolicyInherit
		}
		if err := stores.Streams().Create(ctx, stream); err != nil {
			return fmt.Errorf("creating stream %q: %w", s.Name, err)
		}
		streams[strings.ToLower(s.Name)] = stream
		fmt.Fprintf(out, "  stream %q: id=%d\n", stream.Name, stream.ID)
	}

	if r.ModerationStream != "" {
		stream := streams[strings.ToLower(r.ModerationStream)]
		if err := stores.Realms().SetModerationRequestStream(ctx, realm.ID, &stream.ID); err != nil {
			return fmt.Errorf("setting moderation stream: %w", err)
		}
		fmt.Fprintf(out, "  moderation stream: %q\n", stream.Name)
	}

	users := make(map[string]*model.User, len(r.Users))
	hasNotificationBot := false
	for _, u := range r.Users {
		user := &model.User{
			ID:       id.New(),
			RealmID:  realm.ID,
			FullName: u.FullName,
			Email:    u.Email,
			APIKey:   u.APIKey,
			IsBot:    u.Bot,
			IsActive: true,
		}
		generated := false
		if user.APIKey == "" {
			user.APIKey = generateAPIKey()
			generated = true
		}
		if u.Owner != "" {
			user.BotOwnerID = &users[strings.ToLower(u.Owner)].ID
		}
		if u.DefaultStream != "" {
			user.DefaultStreamID = &streams[strings.ToLower(u.DefaultStream)].ID
		}
		if err := stores.Users().Create(ctx, user); err != nil {
			return fmt.Errorf("creating user %q: %w", u.Email, err)
		}
		users[strings.ToLower(u.Email)] = user

		kind := "user"
		if user.IsBot {
			kind = "bot"
		}
		if generated {
			fmt.Fprintf(out, "  %s %q: id=%d api_key=%s\n", kind, user.Email, user.ID, user.APIKey)
		} else {
			fmt.Fprintf(out, "  %s %q: id=%d\n", kind, user.Email, user.ID)
		}
		if strings.EqualFold(user.Email, notificationBotEmail) {
			hasNotificationBot = true
		}
	}

	if r.ModerationStream != "" && !hasNotificationBot {
		fmt.Fprintf(out, "  warning: reports need a %q bot in this realm\n", notificationBotEmail)
	}
	return nil
}

func generateAPIKey() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
