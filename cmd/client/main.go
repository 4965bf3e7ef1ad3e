// Package main runs the Turvia command-line client: an interactive
// shell over the tourism backend for browsing cities, hotels and
// attractions, leaving reviews, booking stays and, for admins,
// managing reservations and users.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/joaomvale/turvia/internal/admin"
	"github.com/joaomvale/turvia/internal/booking"
	"github.com/joaomvale/turvia/internal/client/api"
	"github.com/joaomvale/turvia/internal/client/credentials"
	"github.com/joaomvale/turvia/internal/client/session"
	"github.com/joaomvale/turvia/internal/config"
	"github.com/joaomvale/turvia/internal/logger"
	"github.com/joaomvale/turvia/internal/models"
	"github.com/joaomvale/turvia/internal/reservation"
)

var (
	version   string
	buildDate string
)

type app struct {
	api     *api.Client
	session *session.Store
	admin   *admin.Service
	log     *zap.Logger
}

// repl runs the interactive shell loop.
func (a *app) repl() {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("turvia> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		ctx := context.Background()
		switch args[0] {
		case "help":
			printHelp()
		case "login":
			if len(args) < 3 {
				fmt.Println("Usage: login <email> <password>")
				continue
			}
			user, err := a.session.Login(ctx, args[1], args[2])
			if err != nil {
				fmt.Println(err)
				continue
			}
			fmt.Printf("Logged in as %s (%s)\n", user.Name, user.Role)
		case "register":
			if len(args) < 4 {
				fmt.Println("Usage: register <name> <email> <password>")
				continue
			}
			user, err := a.session.Register(ctx, args[1], args[2], args[3])
			if err != nil {
				fmt.Println(err)
				continue
			}
			fmt.Printf("Welcome, %s\n", user.Name)
		case "whoami":
			a.whoami()
		case "logout":
			if err := a.session.Logout(); err != nil {
				fmt.Println(err)
				continue
			}
			fmt.Println("Logged out")
		case "cities":
			a.listCities(ctx)
		case "city":
			if len(args) < 2 {
				fmt.Println("Usage: city <id>")
				continue
			}
			a.showCity(ctx, args[1])
		case "hotels":
			a.listHotels(ctx)
		case "hotel":
			if len(args) < 2 {
				fmt.Println("Usage: hotel <id>")
				continue
			}
			a.showHotel(ctx, args[1])
		case "attractions":
			a.listAttractions(ctx)
		case "attraction":
			if len(args) < 2 {
				fmt.Println("Usage: attraction <id>")
				continue
			}
			a.showAttraction(ctx, args[1])
		case "reviews":
			if len(args) < 3 {
				fmt.Println("Usage: reviews <hotel|city> <id>")
				continue
			}
			a.listReviews(ctx, args[1], args[2])
		case "review":
			if len(args) < 5 {
				fmt.Println("Usage: review <hotel|city> <id> <rating 1-5> <comment...>")
				continue
			}
			a.createReview(ctx, args[1], args[2], args[3], strings.Join(args[4:], " "))
		case "reserve":
			if len(args) < 5 {
				fmt.Println("Usage: reserve <hotelId> <check-in> <check-out> <guests>")
				continue
			}
			a.reserve(ctx, args[1], args[2], args[3], args[4])
		case "reservas":
			filter := reservation.FilterAll
			if len(args) > 1 {
				filter = strings.ToUpper(args[1])
			}
			a.listReservations(ctx, filter)
		case "cancel":
			if len(args) < 2 {
				fmt.Println("Usage: cancel <reservationId>")
				continue
			}
			a.cancel(ctx, args[1])
		case "admin":
			if len(args) < 2 {
				fmt.Println("Usage: admin <reservations|confirm|cancel|users|role> ...")
				continue
			}
			a.adminCmd(ctx, args[1:])
		case "exit":
			fmt.Println("Bye")
			return
		default:
			fmt.Println("Unknown command. Type 'help' for a list of commands.")
		}
	}
}

func printHelp() {
	fmt.Println(`Available commands:
  login <email> <password>
  register <name> <email> <password>
  whoami
  logout
  cities | hotels | attractions
  city <id> | hotel <id> | attraction <id>
  reviews <hotel|city> <id>
  review <hotel|city> <id> <rating> <comment...>
  reserve <hotelId> <check-in> <check-out> <guests>
  reservas [PENDING|CONFIRMED|CANCELLED]
  cancel <reservationId>
  admin reservations [status]
  admin confirm <id> | admin cancel <id>
  admin users | admin role <id> <USER|ADMIN>
  admin addcity <name> <description...> | admin editcity <id> <name> <description...> | admin delcity <id>
  admin addhotel <cityId> <price> <name...> | admin price <hotelId> <price> | admin delhotel <id>
  admin addattraction <cityId> <name...> | admin editattraction <id> <name...> | admin delattraction <id>
  exit`)
}

func (a *app) whoami() {
	user := a.session.User()
	if user == nil {
		fmt.Println("Not logged in")
		return
	}
	fmt.Printf("%s <%s> role=%s\n", user.Name, user.Email, user.Role)
	if exp, ok := a.session.TokenExpiry(); ok {
		fmt.Printf("Token expires %s\n", exp.Format("2006-01-02 15:04"))
	}
}

func (a *app) showCity(ctx context.Context, id string) {
	city, err := a.api.City(ctx, id)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("%s\n%s\n", city.Name, city.Description)
}

func (a *app) showHotel(ctx context.Context, id string) {
	hotel, err := a.api.Hotel(ctx, id)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("%s - %s/night\n%s\n", hotel.Name, booking.FormatKz(hotel.PricePerNight), hotel.Description)
	if hotel.Address != "" {
		fmt.Println(hotel.Address)
	}
}

func (a *app) showAttraction(ctx context.Context, id string) {
	at, err := a.api.Attraction(ctx, id)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("%s\n%s\n", at.Name, at.Description)
}

func (a *app) listCities(ctx context.Context) {
	cities, err := a.api.Cities(ctx)
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, c := range cities {
		fmt.Printf("%s  %s - %s\n", c.ID, c.Name, c.Description)
	}
}

func (a *app) listHotels(ctx context.Context) {
	hotels, err := a.api.Hotels(ctx)
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, h := range hotels {
		fmt.Printf("%s  %s - %s/night\n", h.ID, h.Name, booking.FormatKz(h.PricePerNight))
	}
}

func (a *app) listAttractions(ctx context.Context) {
	attractions, err := a.api.Attractions(ctx)
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, at := range attractions {
		fmt.Printf("%s  %s - %s\n", at.ID, at.Name, at.Description)
	}
}

func (a *app) listReviews(ctx context.Context, kind, id string) {
	var (
		reviews []models.Review
		err     error
	)
	switch kind {
	case "hotel":
		reviews, err = a.api.HotelReviews(ctx, id)
	case "city":
		reviews, err = a.api.CityReviews(ctx, id)
	default:
		fmt.Println("Target must be 'hotel' or 'city'")
		return
	}
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, r := range reviews {
		fmt.Printf("[%d/5] %s\n", r.Rating, r.Comment)
	}
}

func (a *app) createReview(ctx context.Context, kind, id, ratingStr, comment string) {
	if !a.session.IsAuthenticated() {
		fmt.Println("Please log in first")
		return
	}
	rating, err := strconv.Atoi(ratingStr)
	if err != nil || rating < 1 || rating > 5 {
		fmt.Println("Rating must be an integer between 1 and 5")
		return
	}
	in := api.ReviewInput{Rating: rating, Comment: comment}
	switch kind {
	case "hotel":
		in.HotelID = id
	case "city":
		in.CityID = id
	default:
		fmt.Println("Target must be 'hotel' or 'city'")
		return
	}
	if _, err := a.api.CreateReview(ctx, in); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println("Review created")
}

func (a *app) reserve(ctx context.Context, hotelID, checkIn, checkOut, guestsStr string) {
	guests, err := strconv.Atoi(guestsStr)
	if err != nil {
		fmt.Println("Guests must be a number")
		return
	}

	hotel, err := a.api.Hotel(ctx, hotelID)
	if err != nil {
		fmt.Println(err)
		return
	}

	flow := reservation.NewFlow(a.session, a.api, a.log)
	form := reservation.Form{CheckIn: checkIn, CheckOut: checkOut, Guests: guests}
	res, err := flow.Submit(ctx, hotel, &form)
	if err != nil {
		switch {
		case errors.Is(err, reservation.ErrAuthRequired):
			fmt.Println("Please log in to book a stay")
		case errors.Is(err, reservation.ErrInvalidDateRange):
			fmt.Println("Check-out must be after check-in")
		case errors.Is(err, reservation.ErrInvalidGuestCount):
			fmt.Println("At least one guest is required")
		default:
			fmt.Println("Reservation failed:", err)
		}
		return
	}

	nights := booking.Nights(res.CheckIn.Time, res.CheckOut.Time)
	fmt.Printf("Reserved %s: %d night(s), %d guest(s), total %s (status %s)\n",
		hotel.Name, nights, res.Guests, booking.FormatKz(res.TotalPrice), res.Status)
}

func (a *app) listReservations(ctx context.Context, filter string) {
	user := a.session.User()
	if user == nil {
		fmt.Println("Please log in first")
		return
	}
	list, err := a.api.UserReservations(ctx, user.ID)
	if err != nil {
		fmt.Println(err)
		return
	}
	printReservations(reservation.FilterByStatus(list, filter), user)
}

func printReservations(list []models.Reservation, viewer *models.User) {
	if len(list) == 0 {
		fmt.Println("No reservations")
		return
	}
	for _, r := range list {
		badge := reservation.StatusBadge(r.Status)
		hotelName := r.HotelID
		if r.Hotel != nil {
			hotelName = r.Hotel.Name
		}
		line := fmt.Sprintf("%s  %s  %s -> %s  %s  [%s]",
			r.ID, hotelName,
			r.CheckIn.Format(models.DateLayout), r.CheckOut.Format(models.DateLayout),
			booking.FormatKz(r.TotalPrice), badge.Label)
		if targets := reservation.AllowedTransitions(&r, viewer); len(targets) > 0 {
			actions := make([]string, len(targets))
			for i, t := range targets {
				actions[i] = string(t)
			}
			line += "  actions: " + strings.Join(actions, ", ")
		}
		fmt.Println(line)
	}
}

func (a *app) cancel(ctx context.Context, id string) {
	user := a.session.User()
	if user == nil {
		fmt.Println("Please log in first")
		return
	}
	list, err := a.api.UserReservations(ctx, user.ID)
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, r := range list {
		if r.ID != id {
			continue
		}
		if !reservation.CanTransition(&r, models.StatusCancelled, user) {
			fmt.Printf("Reservation is %s and cannot be cancelled\n", r.Status)
			return
		}
		if _, err := a.api.UpdateReservationStatus(ctx, id, models.StatusCancelled); err != nil {
			fmt.Println(err)
			return
		}
		fmt.Println("Reservation cancelled")
		return
	}
	fmt.Println("Reservation not found")
}

func (a *app) adminCmd(ctx context.Context, args []string) {
	if !a.session.IsAdmin() {
		fmt.Println("Admin role required")
		return
	}
	switch args[0] {
	case "reservations":
		filter := reservation.FilterAll
		if len(args) > 1 {
			filter = strings.ToUpper(args[1])
		}
		list, err := a.api.AllReservations(ctx)
		if err != nil {
			fmt.Println(err)
			return
		}
		printReservations(reservation.FilterByStatus(list, filter), a.session.User())
	case "confirm", "cancel":
		if len(args) < 2 {
			fmt.Printf("Usage: admin %s <reservationId>\n", args[0])
			return
		}
		target := models.StatusConfirmed
		if args[0] == "cancel" {
			target = models.StatusCancelled
		}
		list, err := a.admin.SetReservationStatus(ctx, args[1], target)
		if err != nil {
			fmt.Println(err)
			return
		}
		fmt.Println("Status updated")
		printReservations(list, a.session.User())
	case "users":
		users, err := a.api.Users(ctx)
		if err != nil {
			fmt.Println(err)
			return
		}
		for _, u := range users {
			fmt.Printf("%s  %s <%s>  %s\n", u.ID, u.Name, u.Email, u.Role)
		}
	case "role":
		if len(args) < 3 {
			fmt.Println("Usage: admin role <userId> <USER|ADMIN>")
			return
		}
		role := models.Role(strings.ToUpper(args[2]))
		if role != models.RoleUser && role != models.RoleAdmin {
			fmt.Println("Role must be USER or ADMIN")
			return
		}
		users, err := a.admin.SetUserRole(ctx, args[1], role)
		if err != nil {
			fmt.Println(err)
			return
		}
		fmt.Println("Role updated")
		for _, u := range users {
			fmt.Printf("%s  %s <%s>  %s\n", u.ID, u.Name, u.Email, u.Role)
		}
	case "addcity":
		if len(args) < 3 {
			fmt.Println("Usage: admin addcity <name> <description...>")
			return
		}
		city, err := a.api.CreateCity(ctx, api.CityInput{Name: args[1], Description: strings.Join(args[2:], " ")})
		if err != nil {
			fmt.Println(err)
			return
		}
		fmt.Printf("City created: %s\n", city.ID)
	case "editcity":
		if len(args) < 4 {
			fmt.Println("Usage: admin editcity <id> <name> <description...>")
			return
		}
		in := api.CityInput{Name: args[2], Description: strings.Join(args[3:], " ")}
		if _, err := a.api.UpdateCity(ctx, args[1], in); err != nil {
			fmt.Println(err)
			return
		}
		fmt.Println("City updated")
	case "delcity":
		if len(args) < 2 {
			fmt.Println("Usage: admin delcity <id>")
			return
		}
		if err := a.api.DeleteCity(ctx, args[1]); err != nil {
			fmt.Println(err)
			return
		}
		fmt.Println("City deleted")
	case "addhotel":
		if len(args) < 4 {
			fmt.Println("Usage: admin addhotel <cityId> <pricePerNight> <name...>")
			return
		}
		price, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil || price <= 0 {
			fmt.Println("Price must be a positive number")
			return
		}
		hotel, err := a.api.CreateHotel(ctx, api.HotelInput{
			Name:          strings.Join(args[3:], " "),
			CityID:        args[1],
			PricePerNight: price,
		})
		if err != nil {
			fmt.Println(err)
			return
		}
		fmt.Printf("Hotel created: %s\n", hotel.ID)
	case "price":
		if len(args) < 3 {
			fmt.Println("Usage: admin price <hotelId> <pricePerNight>")
			return
		}
		price, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil || price <= 0 {
			fmt.Println("Price must be a positive number")
			return
		}
		hotel, err := a.api.Hotel(ctx, args[1])
		if err != nil {
			fmt.Println(err)
			return
		}
		in := api.HotelInput{
			Name:          hotel.Name,
			Description:   hotel.Description,
			PricePerNight: price,
			CityID:        hotel.CityID,
			Address:       hotel.Address,
			Image:         hotel.Image,
		}
		if _, err := a.api.UpdateHotel(ctx, hotel.ID, in); err != nil {
			fmt.Println(err)
			return
		}
		fmt.Printf("Price set to %s/night\n", booking.FormatKz(price))
	case "delhotel":
		if len(args) < 2 {
			fmt.Println("Usage: admin delhotel <id>")
			return
		}
		if err := a.api.DeleteHotel(ctx, args[1]); err != nil {
			fmt.Println(err)
			return
		}
		fmt.Println("Hotel deleted")
	case "addattraction":
		if len(args) < 3 {
			fmt.Println("Usage: admin addattraction <cityId> <name...>")
			return
		}
		at, err := a.api.CreateAttraction(ctx, api.AttractionInput{
			Name:   strings.Join(args[2:], " "),
			CityID: args[1],
		})
		if err != nil {
			fmt.Println(err)
			return
		}
		fmt.Printf("Attraction created: %s\n", at.ID)
	case "editattraction":
		if len(args) < 3 {
			fmt.Println("Usage: admin editattraction <id> <name...>")
			return
		}
		at, err := a.api.Attraction(ctx, args[1])
		if err != nil {
			fmt.Println(err)
			return
		}
		in := api.AttractionInput{
			Name:        strings.Join(args[2:], " "),
			Description: at.Description,
			CityID:      at.CityID,
			Image:       at.Image,
		}
		if _, err := a.api.UpdateAttraction(ctx, at.ID, in); err != nil {
			fmt.Println(err)
			return
		}
		fmt.Println("Attraction updated")
	case "delattraction":
		if len(args) < 2 {
			fmt.Println("Usage: admin delattraction <id>")
			return
		}
		if err := a.api.DeleteAttraction(ctx, args[1]); err != nil {
			fmt.Println(err)
			return
		}
		fmt.Println("Attraction deleted")
	default:
		fmt.Println("Unknown admin command")
	}
}

// main parses configuration, restores any persisted session and drops
// into the shell.
func main() {
	var showVer bool
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	options := config.Parse()

	if showVer {
		fmt.Printf("Turvia Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	log := logger.New()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Log.Sync() }()

	creds := credentials.NewStore(options.CredentialsFile)
	if err := creds.Load(); err != nil {
		log.Log.Fatal("cannot load credentials", zap.Error(err))
	}

	httpClient := &http.Client{Timeout: options.RequestTimeout}
	apiClient := api.New(options.APIBaseURL, httpClient, creds, log.Log)
	sess := session.New(apiClient, creds, log.Log)

	// Blocks until the persisted credential is verified or cleared;
	// no role-gated command can run before this resolves.
	if err := sess.Restore(context.Background()); err != nil {
		log.Log.Fatal("session restore", zap.Error(err))
	}

	a := &app{
		api:     apiClient,
		session: sess,
		admin:   admin.NewService(apiClient, sess, log.Log),
		log:     log.Log,
	}
	a.repl()
}
