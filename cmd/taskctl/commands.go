package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"islamicTodo/internal/app"
	"islamicTodo/internal/config"
	"islamicTodo/internal/logger"
	"islamicTodo/internal/models/task"
	"islamicTodo/internal/preferences"
	"islamicTodo/internal/prayer"
	"islamicTodo/internal/query"
	"islamicTodo/internal/quotes"
	"islamicTodo/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var errNotFound = errors.New("задача не найдена")

type cli struct {
	configPath string
	verbose    bool
	now        func() time.Time

	cfg   *config.Config
	store *service.TaskStore
	theme *preferences.Theme
	close func()
}

// newRootCmd возвращает корневую команду и функцию освобождения ресурсов.
// cobra не вызывает PersistentPostRun после ошибки RunE, поэтому
// закрытие хранилища остаётся на вызывающем.
func newRootCmd() (*cobra.Command, func()) {
	c := &cli{now: time.Now}
	return c.rootCmd(), c.shutdown
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "taskctl",
		Short:        "Личный список задач с напоминаниями и временем намазов",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "путь к config.yml (по умолчанию ./config.yml или TASKS_CONFIG)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "писать журнал в stderr")

	root.AddCommand(
		c.addCmd(),
		c.listCmd(),
		c.toggleCmd(),
		c.deleteCmd(),
		c.statsCmd(),
		c.themeCmd(),
		c.quoteCmd(),
		c.prayerCmd(),
		c.configCmd(),
	)
	return root
}

// shutdown закрывает хранилище, открытое в open; повторный вызов ничего не делает
func (c *cli) shutdown() {
	if c.close != nil {
		c.close()
		c.close = nil
	}
	c.store = nil
	c.theme = nil
	logger.Sync()
}

// open загружает конфиг, хранилище и задачи один раз на запуск команды.
// Предупреждение загрузки печатается в stderr команды.
func (c *cli) open(cmd *cobra.Command) error {
	if c.store != nil {
		return nil
	}
	ctx := cmd.Context()

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg

	if c.verbose {
		if err := logger.Init(cfg.Logging.Development); err != nil {
			return err
		}
	}

	storage, closeStorage, err := app.OpenStorage(ctx, cfg)
	if err != nil {
		return err
	}
	c.close = closeStorage

	c.store = service.NewTaskStore(storage)
	c.theme = preferences.NewTheme(storage, cfg.UI.PreferDark)
	if err := c.store.Initialize(ctx); err != nil {
		logger.Warn("CLI: Задачи загружены с предупреждением", zap.Error(err))
		c.palette(ctx).renderWarning(cmd.ErrOrStderr(), err)
	}
	return nil
}

func (c *cli) palette(ctx context.Context) palette {
	if c.theme == nil {
		return newPalette(false)
	}
	return newPalette(c.theme.DarkMode(ctx))
}

// resolveID принимает полный id, его однозначный префикс или суффикс из list
func (c *cli) resolveID(arg string) (task.ID, error) {
	if _, ok := c.store.Get(task.ID(arg)); ok {
		return task.ID(arg), nil
	}

	var found []task.ID
	for _, t := range c.store.Tasks() {
		if s := t.ID.String(); strings.HasPrefix(s, arg) || strings.HasSuffix(s, arg) {
			found = append(found, t.ID)
		}
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("%w: %s", errNotFound, arg)
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("префикс %q подходит к %d задачам", arg, len(found))
	}
}

func (c *cli) addCmd() *cobra.Command {
	var (
		description string
		deadline    string
		priority    string
		tags        []string
	)

	cmd := &cobra.Command{
		Use:   "add TITLE...",
		Short: "Добавить задачу",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.open(cmd); err != nil {
				return err
			}

			due, err := task.ParseDate(deadline)
			if err != nil {
				return err
			}

			change, err := c.store.Add(ctx, task.NewInput(strings.Join(args, " "),
				task.WithDescription(description),
				task.WithDeadline(due),
				task.WithPriority(task.Priority(priority)),
				task.WithTags(tags...),
			))
			if err != nil {
				return err
			}

			p := c.palette(ctx)
			fmt.Fprintln(cmd.OutOrStdout(), p.taskLine(*change.Task, c.now()))
			p.renderWarning(cmd.ErrOrStderr(), change.Warning)
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "описание")
	cmd.Flags().StringVar(&deadline, "deadline", "", "дедлайн YYYY-MM-DD")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "low, medium, high или urgent")
	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "теги (до 5)")
	return cmd
}

func (c *cli) listCmd() *cobra.Command {
	var search, filter, sortMode string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Показать задачи",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f, err := query.ParseFilter(filter)
			if err != nil {
				return err
			}
			s, err := query.ParseSort(sortMode)
			if err != nil {
				return err
			}
			if err := c.open(cmd); err != nil {
				return err
			}

			now := c.now()
			tasks := query.Apply(c.store.Tasks(), query.Params{Search: search, Filter: f, Sort: s}, now)
			c.palette(ctx).renderTasks(cmd.OutOrStdout(), tasks, now)
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "поиск по названию и описанию")
	cmd.Flags().StringVarP(&filter, "filter", "f", "all", "all, completed, pending или overdue")
	cmd.Flags().StringVar(&sortMode, "sort", "created", "created, priority или deadline")
	return cmd
}

func (c *cli) toggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle ID",
		Short: "Отметить задачу выполненной или вернуть в работу",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.open(cmd); err != nil {
				return err
			}
			id, err := c.resolveID(args[0])
			if err != nil {
				return err
			}

			change := c.store.ToggleComplete(ctx, id)
			if !change.Found {
				return fmt.Errorf("%w: %s", errNotFound, id)
			}
			p := c.palette(ctx)
			fmt.Fprintln(cmd.OutOrStdout(), p.taskLine(*change.Task, c.now()))
			p.renderWarning(cmd.ErrOrStderr(), change.Warning)
			return nil
		},
	}
}

func (c *cli) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Удалить задачу",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.open(cmd); err != nil {
				return err
			}
			id, err := c.resolveID(args[0])
			if err != nil {
				return err
			}

			change := c.store.Delete(ctx, id)
			if !change.Found {
				return fmt.Errorf("%w: %s", errNotFound, id)
			}
			p := c.palette(ctx)
			fmt.Fprintf(cmd.OutOrStdout(), "удалено: %s\n", change.Task.Title)
			p.renderWarning(cmd.ErrOrStderr(), change.Warning)
			return nil
		},
	}
}

func (c *cli) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Сводка по задачам",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.open(cmd); err != nil {
				return err
			}
			c.palette(ctx).renderStats(cmd.OutOrStdout(), query.Summarize(c.store.Tasks(), c.now()))
			return nil
		},
	}
}

func (c *cli) themeCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "theme [toggle|dark|light]",
		Short:     "Показать или сменить тему",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"toggle", "dark", "light"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.open(cmd); err != nil {
				return err
			}

			dark := c.theme.DarkMode(ctx)
			var warning error
			if len(args) == 1 {
				switch args[0] {
				case "toggle":
					dark, warning = c.theme.Toggle(ctx)
				case "dark":
					dark, warning = c.theme.SetDarkMode(ctx, true)
				case "light":
					dark, warning = c.theme.SetDarkMode(ctx, false)
				}
			}

			name := "light"
			if dark {
				name = "dark"
			}
			p := newPalette(dark)
			fmt.Fprintln(cmd.OutOrStdout(), "тема: "+name)
			p.renderWarning(cmd.ErrOrStderr(), warning)
			return nil
		},
	}
}

func (c *cli) quoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quote",
		Short: "Случайное напоминание из Корана",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.open(cmd); err != nil {
				return err
			}
			c.palette(ctx).renderQuote(cmd.OutOrStdout(), quotes.NewPicker(nil).Random())
			return nil
		},
	}
}

func (c *cli) prayerCmd() *cobra.Command {
	var city, country string

	cmd := &cobra.Command{
		Use:   "prayer",
		Short: "Время намазов на сегодня",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.open(cmd); err != nil {
				return err
			}
			if city == "" {
				city = c.cfg.Prayer.City
			}
			if country == "" {
				country = c.cfg.Prayer.Country
			}

			client := prayer.NewClient(
				prayer.WithBaseURL(c.cfg.Prayer.BaseURL),
				prayer.WithMethod(c.cfg.Prayer.Method),
				prayer.WithTimeout(c.cfg.Prayer.Timeout),
			)
			timings, err := client.Timings(ctx, city, country)
			if err != nil {
				return err
			}
			c.palette(ctx).renderPrayer(cmd.OutOrStdout(), timings)
			return nil
		},
	}
	cmd.Flags().StringVar(&city, "city", "", "город (по умолчанию из конфига)")
	cmd.Flags().StringVar(&country, "country", "", "страна (по умолчанию из конфига)")
	return cmd
}

func (c *cli) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Работа с файлом конфигурации",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init [PATH]",
		Short: "Создать config.yml со значениями по умолчанию",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultPath
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "создан %s\n", path)
			return nil
		},
	})
	return cmd
}
