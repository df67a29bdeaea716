package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/pos-terminal/internal/api"
	"github.com/vladislavdragonenkov/pos-terminal/internal/cart"
	"github.com/vladislavdragonenkov/pos-terminal/internal/catalog"
	"github.com/vladislavdragonenkov/pos-terminal/internal/domain"
	"github.com/vladislavdragonenkov/pos-terminal/internal/purchase"
	"github.com/vladislavdragonenkov/pos-terminal/internal/report"
	"github.com/vladislavdragonenkov/pos-terminal/internal/session"
)

// Backend — вызовы бэкенда, нужные командному циклу.
// *api.Client реализует интерфейс целиком.
type Backend interface {
	Login(ctx context.Context, email, password string) (domain.User, string, error)
	SubmitTransaction(ctx context.Context, sub cart.Submission) error
	ListTransactions(ctx context.Context) ([]domain.SalesRecord, error)
	DailySales(ctx context.Context, branchID string) (api.DailySalesSummary, error)
	TopProducts(ctx context.Context) ([]api.TopProductRow, error)
	GetProduct(ctx context.Context, id int64) (domain.Product, error)
	CreateProduct(ctx context.Context, input domain.ProductInput) (domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, input domain.ProductInput) (domain.Product, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

var _ Backend = (*api.Client)(nil)

// ParseQuantity разбирает количество из пользовательского ввода.
// Нечисловые и неположительные значения приводятся к единице: оператор
// получает товар вместо отказа.
func ParseQuantity(s string) int32 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil || n < 1 {
		return 1
	}
	return int32(n)
}

// Terminal — интерактивный командный цикл кассового терминала.
type Terminal struct {
	in      io.Reader
	out     io.Writer
	backend Backend
	session *session.Store
	catalog *catalog.Store
	cart    *cart.Store
	order   *purchase.Order
	logger  *log.Entry
}

// New собирает терминал поверх готовых сторов.
func New(in io.Reader, out io.Writer, backend Backend, sess *session.Store, cat *catalog.Store, crt *cart.Store, logger *log.Entry) *Terminal {
	if logger == nil {
		logger = log.New().WithField("component", "terminal")
	}
	return &Terminal{
		in:      in,
		out:     out,
		backend: backend,
		session: sess,
		catalog: cat,
		cart:    crt,
		order:   purchase.NewOrder(),
		logger:  logger,
	}
}

// Run читает команды построчно до отмены контекста или EOF.
func (t *Terminal) Run(ctx context.Context) error {
	fmt.Fprintln(t.out, "POS terminal ready, type 'help' for commands")

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(t.in)
		for scanner.Scan() {
			// Отправка под select: после отмены контекста читающая сторона
			// ушла, и горутина обязана завершиться, а не виснуть на канале.
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	t.prompt()
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(t.out, "")
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return fmt.Errorf("read input: %w", err)
					}
				default:
				}
				return nil
			}
			if t.execute(ctx, line) {
				return nil
			}
			t.prompt()
		}
	}
}

func (t *Terminal) prompt() {
	fmt.Fprint(t.out, "pos> ")
}

// execute выполняет одну команду; true — запрошен выход.
func (t *Terminal) execute(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, args := fields[0], fields[1:]

	var err error
	switch cmd {
	case "quit", "exit":
		return true
	case "help":
		t.printHelp()
	case "login":
		err = t.login(ctx, args)
	case "logout":
		err = t.logout()
	case "status":
		t.printStatus()
	case "products":
		err = t.showProducts(ctx)
	case "search":
		err = t.search(ctx, strings.Join(args, " "))
	case "clear":
		err = t.withCatalog(ctx, t.catalog.ClearSearch)
	case "next":
		err = t.withCatalog(ctx, t.catalog.NextPage)
	case "prev":
		err = t.withCatalog(ctx, t.catalog.PrevPage)
	case "page":
		err = t.goToPage(ctx, args)
	case "add":
		err = t.addToCart(args)
	case "cart":
		t.printCart()
	case "qty":
		err = t.setQuantity(args)
	case "remove":
		err = t.removeItem(args)
	case "discount":
		err = t.setDiscount(args)
	case "customer":
		t.setCustomer(args)
	case "pay":
		t.setPayment(args)
	case "checkout":
		err = t.checkout(ctx)
	case "po":
		err = t.purchaseOrder(args)
	case "product":
		err = t.product(ctx, args)
	case "report":
		err = t.report(ctx, args)
	default:
		fmt.Fprintf(t.out, "unknown command %q, type 'help'\n", cmd)
	}

	if err != nil {
		fmt.Fprintf(t.out, "error: %v\n", err)
	}
	return false
}

func (t *Terminal) printHelp() {
	fmt.Fprint(t.out, `commands:
  login <email> <password>   authenticate against the backend
  logout                     clear the stored session
  status                     show session and catalog state
  products                   show the current catalog page
  search <text>              commit a search (resets to page 1)
  clear                      clear search and return to page 1
  next | prev | page <n>     paginate the catalog
  add <product-id> [qty]     add a product to the cart
  cart                       show cart lines and totals
  qty <product-id> <n>       change a line quantity (0 removes)
  remove <product-id>        remove a cart line
  discount <percent>         set the cart discount
  customer <name> [phone]    set customer details
  pay <method>               set the payment method
  checkout                   submit the transaction
  po <subcommand>            edit the purchase order draft
  product add <k=v ...>      create a product (name, sku, desc, price, stock, category, active)
  product edit <id> <k=v ..> update product fields
  product categories         list product categories
  report                     local overview, category breakdown, top products
  report region|month        local region / monthly groupings
  report top                 backend top-products report
  report daily               backend daily sales for the session branch
  quit                       exit
`)
}

func (t *Terminal) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: login <email> <password>")
	}
	user, token, err := t.backend.Login(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	if err := t.session.Login(user, token); err != nil {
		return err
	}
	fmt.Fprintf(t.out, "logged in as %s (%s)\n", user.Name, user.Email)
	return nil
}

func (t *Terminal) logout() error {
	if err := t.session.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(t.out, "logged out")
	return nil
}

func (t *Terminal) printStatus() {
	if user, ok := t.session.User(); ok {
		fmt.Fprintf(t.out, "session: %s, branch %s\n", user.Email, user.Branch)
	} else {
		fmt.Fprintln(t.out, "session: not authenticated")
	}
	q := t.catalog.Query()
	current, last := t.catalog.Pagination()
	fmt.Fprintf(t.out, "catalog: state=%s search=%q page=%d/%d\n", t.catalog.State(), q.Search, current, last)
	if err := t.catalog.Err(); err != nil {
		fmt.Fprintf(t.out, "catalog: last error: %v\n", err)
	}
	fmt.Fprintf(t.out, "cart: %d lines, order: %d lines\n", len(t.cart.Items()), len(t.order.Lines()))
}

func (t *Terminal) showProducts(ctx context.Context) error {
	if t.catalog.State() == catalog.StateIdle {
		if err := t.catalog.Load(ctx); err != nil {
			return err
		}
	}
	t.renderCatalog()
	return nil
}

func (t *Terminal) search(ctx context.Context, text string) error {
	t.catalog.SetDraft(text)
	if err := t.catalog.CommitSearch(ctx); err != nil {
		return err
	}
	t.renderCatalog()
	return nil
}

// withCatalog выполняет операцию каталога и перерисовывает страницу.
func (t *Terminal) withCatalog(ctx context.Context, op func(context.Context) error) error {
	if err := op(ctx); err != nil {
		return err
	}
	t.renderCatalog()
	return nil
}

func (t *Terminal) goToPage(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: page <n>")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("page must be a number: %w", err)
	}
	return t.withCatalog(ctx, func(ctx context.Context) error {
		return t.catalog.GoToPage(ctx, n)
	})
}

func (t *Terminal) renderCatalog() {
	products := t.catalog.Products()
	if len(products) == 0 {
		fmt.Fprintln(t.out, "no products")
		return
	}
	for _, p := range products {
		fmt.Fprintf(t.out, "  [%d] %-30s %12s  stock %d\n", p.ID, p.Name, FormatIDR(p.PriceMinor), p.StockQuantity)
	}
	current, last := t.catalog.Pagination()
	fmt.Fprintf(t.out, "page %d of %d\n", current, last)
}

func (t *Terminal) addToCart(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: add <product-id> [qty]")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("product id must be a number: %w", err)
	}
	qty := int32(1)
	if len(args) > 1 {
		qty = ParseQuantity(args[1])
	}
	if err := t.cart.AddItem(id, qty); err != nil {
		return err
	}
	fmt.Fprintf(t.out, "added product %d x%d\n", id, qty)
	return nil
}

func (t *Terminal) printCart() {
	items := t.cart.Items()
	if len(items) == 0 {
		fmt.Fprintln(t.out, "cart is empty")
		return
	}
	for _, li := range items {
		fmt.Fprintf(t.out, "  [%d] %-30s x%-4d %12s\n", li.ProductID, li.Name, li.Quantity, FormatIDR(li.SubtotalMinor()))
	}
	tot := t.cart.Totals()
	fmt.Fprintf(t.out, "subtotal %s, discount %s, tax %s, total %s\n",
		FormatIDR(tot.SubtotalMinor),
		FormatIDRFloat(tot.DiscountAmount),
		FormatIDRFloat(tot.TaxAmount),
		FormatIDRFloat(tot.Total))
}

func (t *Terminal) setQuantity(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: qty <product-id> <n>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("product id must be a number: %w", err)
	}
	n, err := strconv.ParseInt(args[1], 10, 32)
	if err != nil {
		return fmt.Errorf("quantity must be a number: %w", err)
	}
	t.cart.UpdateQuantity(id, int32(n))
	t.printCart()
	return nil
}

func (t *Terminal) removeItem(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: remove <product-id>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("product id must be a number: %w", err)
	}
	t.cart.RemoveItem(id)
	t.printCart()
	return nil
}

func (t *Terminal) setDiscount(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: discount <percent>")
	}
	percent, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("discount must be a number: %w", err)
	}
	t.cart.SetDiscountPercent(percent)
	t.printCart()
	return nil
}

func (t *Terminal) setCustomer(args []string) {
	name, phone := "", ""
	if len(args) > 0 {
		name = args[0]
	}
	if len(args) > 1 {
		phone = args[1]
	}
	t.cart.SetCustomer(name, phone)
	fmt.Fprintf(t.out, "customer set to %q\n", name)
}

func (t *Terminal) setPayment(args []string) {
	method := cart.DefaultPaymentMethod
	if len(args) > 0 {
		method = args[0]
	}
	t.cart.SetPaymentMethod(method)
	fmt.Fprintf(t.out, "payment method set to %q\n", method)
}

func (t *Terminal) checkout(ctx context.Context) error {
	if !t.session.Authenticated() {
		return domain.ErrNotAuthenticated
	}
	sub, err := t.cart.Checkout(ctx, t.backend)
	if err != nil {
		return err
	}
	fmt.Fprintf(t.out, "transaction submitted, total %s (key %s)\n", FormatIDRFloat(sub.Totals.Total), sub.IdempotencyKey)
	return nil
}

func (t *Terminal) purchaseOrder(args []string) error {
	if len(args) == 0 {
		t.printOrder()
		return nil
	}
	sub, rest := args[0], args[1:]
	switch sub {
	case "add":
		line := t.order.Add()
		fmt.Fprintf(t.out, "added line %s\n", line.ID)
	case "list":
		t.printOrder()
	case "desc":
		if len(rest) < 2 {
			return fmt.Errorf("usage: po desc <line-id> <text>")
		}
		return t.order.SetDescription(rest[0], strings.Join(rest[1:], " "))
	case "qty":
		if len(rest) != 2 {
			return fmt.Errorf("usage: po qty <line-id> <n>")
		}
		return t.order.SetQuantity(rest[0], ParseQuantity(rest[1]))
	case "price":
		if len(rest) != 2 {
			return fmt.Errorf("usage: po price <line-id> <minor>")
		}
		price, err := strconv.ParseInt(rest[1], 10, 64)
		if err != nil {
			return fmt.Errorf("price must be a number: %w", err)
		}
		return t.order.SetUnitPrice(rest[0], price)
	case "rm":
		if len(rest) != 1 {
			return fmt.Errorf("usage: po rm <line-id>")
		}
		t.order.Remove(rest[0])
	case "supplier":
		t.order.SetSupplier(strings.Join(rest, " "))
	case "notes":
		t.order.SetNotes(strings.Join(rest, " "))
	default:
		return fmt.Errorf("unknown po subcommand %q", sub)
	}
	return nil
}

func (t *Terminal) printOrder() {
	lines := t.order.Lines()
	if len(lines) == 0 {
		fmt.Fprintln(t.out, "purchase order is empty")
		return
	}
	supplier, orderDate, _ := t.order.Header()
	fmt.Fprintf(t.out, "supplier %q, date %s\n", supplier, orderDate.Format("2006-01-02"))
	for _, l := range lines {
		fmt.Fprintf(t.out, "  [%s] %-30s x%-4d @ %12s = %12s\n",
			l.ID, l.Description, l.Quantity, FormatIDR(l.UnitPriceMinor), FormatIDR(l.TotalMinor))
	}
	tot := t.order.Totals()
	fmt.Fprintf(t.out, "subtotal %s, tax %s, grand total %s\n",
		FormatIDR(tot.SubtotalMinor), FormatIDRFloat(tot.TaxAmount), FormatIDRFloat(tot.GrandTotal))
}

func (t *Terminal) report(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return t.reportOverview(ctx)
	}

	switch args[0] {
	case "daily":
		summary, err := t.backend.DailySales(ctx, t.session.Branch())
		if err != nil {
			return err
		}
		fmt.Fprintf(t.out, "daily sales %s: %s across %d transactions\n",
			summary.Date, FormatIDR(summary.TotalMinor), summary.Transactions)
		return nil
	case "top":
		rows, err := t.backend.TopProducts(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(t.out, "top products (backend):")
		for _, row := range rows {
			fmt.Fprintf(t.out, "  %-30s %12s  (%d units)\n", row.Product, FormatIDR(row.TotalMinor), row.Quantity)
		}
		return nil
	case "region":
		records, err := t.backend.ListTransactions(ctx)
		if err != nil {
			return err
		}
		t.printBuckets("by region:", report.ByRegion(records))
		return nil
	case "month":
		records, err := t.backend.ListTransactions(ctx)
		if err != nil {
			return err
		}
		t.printBuckets("by month:", report.ByMonth(records))
		return nil
	default:
		return fmt.Errorf("unknown report %q, expected region|month|top|daily", args[0])
	}
}

func (t *Terminal) reportOverview(ctx context.Context) error {
	records, err := t.backend.ListTransactions(ctx)
	if err != nil {
		return err
	}

	ov := report.ComputeOverview(records)
	fmt.Fprintf(t.out, "revenue %s, orders %d, units %d, avg order %s\n",
		FormatIDR(ov.TotalRevenueMinor), ov.TotalOrders, ov.TotalQuantity, FormatIDRFloat(ov.AvgOrderValue))

	t.printBuckets("by category:", report.ByCategory(records))

	fmt.Fprintln(t.out, "top products:")
	for _, b := range report.TopProducts(records, report.TopProductsLimit) {
		fmt.Fprintf(t.out, "  %-30s %12s\n", b.Key, FormatIDR(b.TotalMinor))
	}
	return nil
}

func (t *Terminal) printBuckets(title string, buckets []report.Bucket) {
	fmt.Fprintln(t.out, title)
	for _, b := range buckets {
		fmt.Fprintf(t.out, "  %-20s %12s  (%d units, %d orders)\n", b.Key, FormatIDR(b.TotalMinor), b.Quantity, b.Count)
	}
}

func (t *Terminal) product(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: product add|edit|categories")
	}
	sub, rest := args[0], args[1:]
	switch sub {
	case "add":
		input, err := applyProductFields(domain.ProductInput{IsActive: true}, rest)
		if err != nil {
			return err
		}
		created, err := t.backend.CreateProduct(ctx, input)
		if err != nil {
			return err
		}
		fmt.Fprintf(t.out, "created product %d %q\n", created.ID, created.Name)
		return nil
	case "edit":
		if len(rest) < 2 {
			return fmt.Errorf("usage: product edit <id> <key=value ...>")
		}
		id, err := strconv.ParseInt(rest[0], 10, 64)
		if err != nil {
			return fmt.Errorf("product id must be a number: %w", err)
		}
		existing, err := t.backend.GetProduct(ctx, id)
		if err != nil {
			return err
		}
		input, err := applyProductFields(inputFromProduct(existing), rest[1:])
		if err != nil {
			return err
		}
		updated, err := t.backend.UpdateProduct(ctx, id, input)
		if err != nil {
			return err
		}
		fmt.Fprintf(t.out, "updated product %d %q\n", updated.ID, updated.Name)
		return nil
	case "categories":
		categories, err := t.backend.ListCategories(ctx)
		if err != nil {
			return err
		}
		for _, c := range categories {
			fmt.Fprintf(t.out, "  [%d] %s\n", c.ID, c.Name)
		}
		return nil
	default:
		return fmt.Errorf("unknown product subcommand %q", sub)
	}
}

// inputFromProduct превращает товар в форму для частичного редактирования.
func inputFromProduct(p domain.Product) domain.ProductInput {
	return domain.ProductInput{
		Name:        p.Name,
		SKU:         p.SKU,
		Description: p.Description,
		PriceMinor:  p.PriceMinor,
		Stock:       p.StockQuantity,
		CategoryID:  p.CategoryID,
		IsActive:    p.IsActive,
	}
}

type fieldPair struct {
	key   string
	value string
}

// parseFieldPairs разбирает аргументы вида key=value; поля без '='
// продолжают значение предыдущего ключа, так что 'name=Kopi Susu' работает.
func parseFieldPairs(args []string) ([]fieldPair, error) {
	var pairs []fieldPair
	for _, arg := range args {
		key, value, found := strings.Cut(arg, "=")
		if !found {
			if len(pairs) == 0 {
				return nil, fmt.Errorf("expected key=value, got %q", arg)
			}
			pairs[len(pairs)-1].value += " " + arg
			continue
		}
		pairs = append(pairs, fieldPair{key: key, value: value})
	}
	return pairs, nil
}

// applyProductFields накладывает key=value поля на форму товара.
func applyProductFields(base domain.ProductInput, args []string) (domain.ProductInput, error) {
	pairs, err := parseFieldPairs(args)
	if err != nil {
		return base, err
	}
	for _, pair := range pairs {
		switch pair.key {
		case "name":
			base.Name = pair.value
		case "sku":
			base.SKU = pair.value
		case "desc":
			base.Description = pair.value
		case "price":
			price, err := strconv.ParseInt(pair.value, 10, 64)
			if err != nil {
				return base, fmt.Errorf("price must be a number: %w", err)
			}
			base.PriceMinor = price
		case "stock":
			stock, err := strconv.ParseInt(pair.value, 10, 32)
			if err != nil {
				return base, fmt.Errorf("stock must be a number: %w", err)
			}
			base.Stock = int32(stock)
		case "category":
			categoryID, err := strconv.ParseInt(pair.value, 10, 64)
			if err != nil {
				return base, fmt.Errorf("category must be a number: %w", err)
			}
			base.CategoryID = categoryID
		case "active":
			active, err := strconv.ParseBool(pair.value)
			if err != nil {
				return base, fmt.Errorf("active must be true or false: %w", err)
			}
			base.IsActive = active
		default:
			return base, fmt.Errorf("unknown field %q", pair.key)
		}
	}
	return base, nil
}
