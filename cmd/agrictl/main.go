// Command agrictl is the terminal front end of the marketplace. Each
// invocation dispatches on the first argument the way the web client
// dispatches on the current route, wiring only the views that route needs.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/JosherenPro/ManiocAGRI/client"
	"github.com/JosherenPro/ManiocAGRI/client/cart"
	"github.com/JosherenPro/ManiocAGRI/client/view"
	"github.com/JosherenPro/ManiocAGRI/client/workflow"
	"github.com/JosherenPro/ManiocAGRI/internal/catalog"
)

const defaultBaseURL = "http://localhost:8080"

func main() {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	baseURL := os.Getenv("AGRIMARKET_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	api := client.New(baseURL)
	session, store, err := loadSession()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load session: %v\n", err)
		os.Exit(1)
	}
	if session != nil {
		api.SetToken(session.AccessToken)
	}

	ctx := context.Background()
	stdin := bufio.NewReader(os.Stdin)
	notifier := &consoleNotifier{}
	confirmer := &consoleConfirmer{in: stdin}
	controller := workflow.NewController(api, cart.New(), notifier, confirmer)

	var runErr error
	switch os.Args[1] {
	case "login":
		runErr = runLogin(ctx, api, store, stdin, os.Args[2:])
	case "logout":
		runErr = store.Clear()
		if runErr == nil {
			fmt.Println("logged out")
		}
	case "whoami":
		runErr = runWhoami(ctx, api)
	case "products":
		runErr = runProducts(ctx, api, notifier, confirmer, os.Args[2:])
	case "shop":
		runErr = runShop(ctx, controller, session, stdin)
	case "track":
		runErr = runTrack(ctx, controller, os.Args[2:])
	case "pending":
		runErr = runPending(ctx, controller)
	case "assign":
		runErr = runAssign(ctx, controller, os.Args[2:])
	case "reject":
		runErr = runReject(ctx, controller, os.Args[2:])
	case "deliveries":
		runErr = runDeliveries(ctx, controller)
	case "advance":
		runErr = runAdvance(ctx, controller, os.Args[2:])
	case "stats":
		runErr = runStats(ctx, controller)
	case "users":
		runErr = runUsers(ctx, api, notifier, confirmer, stdin)
	default:
		usage()
		os.Exit(2)
	}

	if runErr != nil {
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: agrictl <command>

  login <username>      authenticate and store the session
  logout                clear the stored session
  whoami                show the current account
  products [query]      list the catalogue, optionally filtered
  shop                  interactive cart and checkout
  track <number>        track an order by its number
  pending               list orders awaiting validation (staff)
  assign <order> <deliverer>   bind a deliverer to an order (staff)
  reject <order>        reject a pending order (staff)
  deliveries            list assigned orders (deliverer)
  advance <order>       request the next delivery transition
  stats                 dashboard counters for the visible orders
  users                 manage accounts and registrations (staff)`)
}

type consoleNotifier struct{}

func (consoleNotifier) Notify(level workflow.Severity, message string) {
	fmt.Printf("[%s] %s\n", level, message)
}

type consoleConfirmer struct {
	in *bufio.Reader
}

func (c *consoleConfirmer) Confirm(prompt string) bool {
	fmt.Printf("%s [y/N] ", prompt)
	line, err := c.in.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func runLogin(ctx context.Context, api *client.Client, store *sessionStore, stdin *bufio.Reader, args []string) error {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: agrictl login <username>")
		return fmt.Errorf("missing username")
	}

	fmt.Print("password: ")
	password, err := stdin.ReadString('\n')
	if err != nil {
		return err
	}

	session, err := api.Login(ctx, args[0], strings.TrimSpace(password))
	if err != nil {
		fmt.Fprintf(os.Stderr, "login failed: %v\n", err)
		return err
	}

	if err := store.Save(session); err != nil {
		fmt.Fprintf(os.Stderr, "failed to store session: %v\n", err)
		return err
	}

	fmt.Printf("signed in as %s (%s)\n", session.Username, session.Role)
	return nil
}

func runWhoami(ctx context.Context, api *client.Client) error {
	user, err := api.CurrentUser(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	fmt.Printf("%s <%s> role=%s approved=%v\n", user.Username, user.Email, user.Role, user.Approved)
	return nil
}

func runProducts(ctx context.Context, api *client.Client, notifier workflow.Notifier, confirmer workflow.Confirmer, args []string) error {
	catalogue := view.NewCatalogueView(api, notifier, confirmer)
	if err := catalogue.Refresh(ctx); err != nil {
		return err
	}

	query := ""
	if len(args) > 0 {
		query = args[0]
	}

	for _, p := range catalogue.Filtered(query) {
		marker := ""
		if p.StockQuantity < catalog.LowStockThreshold {
			marker = "  (low stock)"
		}
		fmt.Printf("%s  %-24s %8d FCFA  stock=%d%s\n", p.ID, p.Name, p.Price, p.StockQuantity, marker)
	}
	return nil
}

// runShop is the checkout loop: the cart lives for the duration of this
// session only.
func runShop(ctx context.Context, controller *workflow.Controller, session *client.Session, stdin *bufio.Reader) error {
	if err := controller.RefreshCatalogue(ctx); err != nil {
		return err
	}

	fmt.Println("commands: list | add <product-id> | qty <product-id> <delta> | cart | checkout | quit")
	for {
		fmt.Print("> ")
		line, err := stdin.ReadString('\n')
		if err != nil {
			return nil
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "list":
			for _, p := range controller.Catalogue() {
				fmt.Printf("%s  %-24s %8d FCFA  stock=%d\n", p.ID, p.Name, p.Price, p.StockQuantity)
			}
		case "add":
			if len(fields) != 2 {
				fmt.Println("usage: add <product-id>")
				continue
			}
			id, err := uuid.FromString(fields[1])
			if err != nil {
				fmt.Println("invalid product id")
				continue
			}
			controller.Cart().Add(id)
			fmt.Println("added")
		case "qty":
			if len(fields) != 3 {
				fmt.Println("usage: qty <product-id> <delta>")
				continue
			}
			id, err := uuid.FromString(fields[1])
			if err != nil {
				fmt.Println("invalid product id")
				continue
			}
			var delta int
			if _, err := fmt.Sscanf(fields[2], "%d", &delta); err != nil {
				fmt.Println("invalid delta")
				continue
			}
			controller.Cart().SetQuantity(id, delta)
		case "cart":
			summary := controller.CartSummary()
			for _, l := range summary.Lines {
				fmt.Printf("%-24s x%-3d %8d FCFA\n", l.Name, l.Quantity, l.Subtotal)
			}
			fmt.Printf("total: %d FCFA\n", summary.Total)
		case "checkout":
			details := promptDetails(stdin, session)
			if _, err := controller.Submit(ctx, details); err == nil {
				return nil
			}
		case "quit", "exit":
			return nil
		default:
			fmt.Println("unknown command")
		}
	}
}

func promptDetails(stdin *bufio.Reader, session *client.Session) workflow.ClientDetails {
	readLine := func(prompt, fallback string) string {
		fmt.Printf("%s: ", prompt)
		line, err := stdin.ReadString('\n')
		if err != nil {
			return fallback
		}
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
		return fallback
	}

	name := ""
	if session != nil {
		name = session.Username
	}
	return workflow.ClientDetails{
		Name:    readLine("name", name),
		Phone:   readLine("phone", ""),
		Address: readLine("delivery address", ""),
	}
}

func runTrack(ctx context.Context, controller *workflow.Controller, args []string) error {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: agrictl track <number>")
		return fmt.Errorf("missing order number")
	}

	tracked, err := controller.Track(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("order %s: %s\n", tracked.Number, tracked.StatusLabel)
	fmt.Printf("client: %s\n", tracked.ClientName)
	fmt.Printf("address: %s\n", tracked.DeliveryAddress)
	if tracked.DelivererEnRoute {
		fmt.Println("a deliverer is en route")
	}
	return nil
}

func runPending(ctx context.Context, controller *workflow.Controller) error {
	orders, err := controller.PendingOrders(ctx)
	if err != nil {
		return err
	}
	for _, o := range orders {
		fmt.Printf("%s  %s  %s  %d FCFA  %s\n", o.ID, o.Number, o.ClientName, o.TotalPrice, o.Status.Label())
	}

	deliverers, err := controller.Deliverers(ctx)
	if err != nil {
		return err
	}
	fmt.Println("available deliverers:")
	for _, d := range deliverers {
		fmt.Printf("  %s  %s\n", d.ID, d.Username)
	}
	return nil
}

func runAssign(ctx context.Context, controller *workflow.Controller, args []string) error {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: agrictl assign <order-id> <deliverer-id>")
		return fmt.Errorf("missing arguments")
	}
	orderID, err := uuid.FromString(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid order id")
		return err
	}
	delivererID, err := uuid.FromString(args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid deliverer id")
		return err
	}

	_, err = controller.Assign(ctx, orderID, delivererID)
	return err
}

func runReject(ctx context.Context, controller *workflow.Controller, args []string) error {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: agrictl reject <order-id>")
		return fmt.Errorf("missing order id")
	}
	orderID, err := uuid.FromString(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid order id")
		return err
	}

	target, err := findOrder(ctx, controller, orderID)
	if err != nil {
		return err
	}
	return controller.Reject(ctx, *target)
}

func runDeliveries(ctx context.Context, controller *workflow.Controller) error {
	orders, err := controller.AssignedOrders(ctx)
	if err != nil {
		return err
	}
	for _, o := range orders {
		action := "none"
		if next, ok := workflow.NextDeliveryAction(o.Status); ok {
			action = "advance to " + next.Label()
		}
		fmt.Printf("%s  %s  %s  %s  [%s]\n", o.ID, o.Number, o.DeliveryAddress, o.Status.Label(), action)
	}
	return nil
}

func runAdvance(ctx context.Context, controller *workflow.Controller, args []string) error {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: agrictl advance <order-id>")
		return fmt.Errorf("missing order id")
	}
	orderID, err := uuid.FromString(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid order id")
		return err
	}

	target, err := findOrder(ctx, controller, orderID)
	if err != nil {
		return err
	}
	_, err = controller.Advance(ctx, *target)
	return err
}

func findOrder(ctx context.Context, controller *workflow.Controller, orderID uuid.UUID) (*client.Order, error) {
	orders, err := controller.AssignedOrders(ctx)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].ID == orderID {
			return &orders[i], nil
		}
	}
	fmt.Fprintln(os.Stderr, "order not found among the orders visible to you")
	return nil, fmt.Errorf("order %s not visible", orderID)
}

func runStats(ctx context.Context, controller *workflow.Controller) error {
	orders, err := controller.AssignedOrders(ctx)
	if err != nil {
		return err
	}
	stats := view.OrderStats(orders)
	fmt.Printf("pending: %d  delivered: %d  rejected: %d\n", stats.Pending, stats.Delivered, stats.Rejected)
	return nil
}

func runUsers(ctx context.Context, api *client.Client, notifier workflow.Notifier, confirmer workflow.Confirmer, stdin *bufio.Reader) error {
	users := view.NewUsersView(api, notifier, confirmer)
	if err := users.Refresh(ctx); err != nil {
		return err
	}

	pending := users.PendingRegistrations()
	if len(pending) > 0 {
		fmt.Println("pending registrations:")
		for _, u := range pending {
			fmt.Printf("  %s  %-16s %-24s %s\n", u.ID, u.Username, u.Email, u.Role)
		}
	}

	fmt.Println("accounts:")
	for _, u := range users.Approved("") {
		fmt.Printf("  %s  %-16s %-24s %s\n", u.ID, u.Username, u.Email, u.Role)
	}

	fmt.Println("commands: approve <user-id> | reject <user-id> | delete <user-id> | quit")
	for {
		fmt.Print("> ")
		line, err := stdin.ReadString('\n')
		if err != nil {
			return nil
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			return nil
		}
		if len(fields) != 2 {
			fmt.Println("usage: <approve|reject|delete> <user-id>")
			continue
		}

		id, err := uuid.FromString(fields[1])
		if err != nil {
			fmt.Println("invalid user id")
			continue
		}
		target, found := lookupUser(users, id)
		if !found {
			fmt.Println("unknown user id")
			continue
		}

		switch fields[0] {
		case "approve":
			_ = users.Approve(ctx, target)
		case "reject":
			_ = users.Reject(ctx, target)
		case "delete":
			_ = users.Delete(ctx, target)
		default:
			fmt.Println("unknown command")
		}
	}
}

func lookupUser(users *view.UsersView, id uuid.UUID) (client.User, bool) {
	for _, u := range users.Approved("") {
		if u.ID == id {
			return u, true
		}
	}
	for _, u := range users.PendingRegistrations() {
		if u.ID == id {
			return u, true
		}
	}
	return client.User{}, false
}
