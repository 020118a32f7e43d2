// Command e2etest drives an attendance scenario against a running daemon:
// schedule, early check-in, check-in, reveal, repeated check-in and pass
// minting.
package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/billat883/ArtSync/api"
	"github.com/billat883/ArtSync/api/client"
	"github.com/billat883/ArtSync/config"
	"github.com/billat883/ArtSync/coprocessor"
	"github.com/billat883/ArtSync/crypto/ecc/bn254"
	"github.com/billat883/ArtSync/crypto/ethereum"
	"github.com/billat883/ArtSync/decryption"
	"github.com/billat883/ArtSync/fhe"
	"github.com/billat883/ArtSync/log"
	"github.com/billat883/ArtSync/types"
	flag "github.com/spf13/pflag"
)

func main() {
	host := flag.String("host", fmt.Sprintf("http://127.0.0.1:%d", config.DefaultAPIPort), "API endpoint of the daemon")
	startDelay := flag.Duration("startDelay", 60*time.Second, "time until the exhibit opens")
	duration := flag.Duration("duration", 2*time.Hour, "length of the check-in window")
	authDays := flag.Uint64("authorizationDays", config.DefaultAuthorizationDays, "validity of decryption authorizations")
	timeout := flag.Duration("decryptionTimeout", config.DefaultDecryptionTimeout, "timeout of decryption requests")
	logLevel := flag.String("logLevel", log.LogLevelDebug, "log level")
	flag.Parse()
	log.Init(*logLevel, "stdout", nil)

	if err := run(context.Background(), *host, *startDelay, *duration, *authDays, *timeout); err != nil {
		log.Fatal(err)
	}
	log.Infow("scenario completed")
}

func newKeys() *ethereum.SignKeys {
	k := ethereum.NewSignKeys()
	if err := k.Generate(); err != nil {
		log.Fatal(err)
	}
	return k
}

func expectCode(err error, def api.Error, step string) error {
	if !client.IsCode(err, def) {
		return fmt.Errorf("%s: expected error code %d, got %v", step, def.Code, err)
	}
	log.Infow("rejected as expected", "step", step, "code", def.Code)
	return nil
}

func run(ctx context.Context, host string, startDelay, duration time.Duration, authDays uint64, timeout time.Duration) error {
	cli, err := client.New(host)
	if err != nil {
		return err
	}
	info, err := cli.Info(ctx)
	if err != nil {
		return fmt.Errorf("cannot reach daemon: %w", err)
	}
	encryptionKey := bn254.New()
	if err := encryptionKey.Unmarshal(info.EncryptionKey); err != nil {
		return fmt.Errorf("invalid encryption key: %w", err)
	}
	enc := coprocessor.NewEncryptor(encryptionKey, info.ChainID)
	log.Infow("connected", "contract", info.Contract.Hex(), "chainId", info.ChainID, "nextExhibitId", info.NextExhibitID)

	organizer, attendee := newKeys(), newKeys()

	start := time.Now().Add(startDelay)
	id, err := cli.Schedule(ctx, info, organizer, &api.ScheduleRequest{
		MetadataCID: "bafkreie2etestartsyncexhibit",
		StartTime:   start.Unix(),
		EndTime:     start.Add(duration).Unix(),
		PassEnabled: true,
	})
	if err != nil {
		return fmt.Errorf("schedule: %w", err)
	}
	if id != info.NextExhibitID {
		return fmt.Errorf("schedule: got id %d, expected %d", id, info.NextExhibitID)
	}
	log.Infow("exhibit scheduled", "exhibitId", id, "organizer", organizer.Address().Hex(), "opensAt", start)

	checkIn := func() error {
		h, proof, err := enc.EncryptInput(coprocessor.DefaultAcceptedInput, info.Contract, attendee.Address())
		if err != nil {
			return err
		}
		return cli.CheckIn(ctx, info, attendee, id, h, proof)
	}
	if err := expectCode(checkIn(), api.ErrWindowClosed, "early check-in"); err != nil {
		return err
	}

	wait := time.Until(start.Add(time.Second))
	log.Infow("waiting for the exhibit to open", "wait", wait.Round(time.Second))
	select {
	case <-time.After(wait):
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := checkIn(); err != nil {
		return fmt.Errorf("check-in: %w", err)
	}
	signed, err := cli.HasCheckedIn(ctx, id, attendee.Address())
	if err != nil || !signed {
		return fmt.Errorf("check-in not recorded: %v", err)
	}
	log.Infow("checked in", "exhibitId", id, "attendee", attendee.Address().Hex())

	reveal := decryption.NewClient(decryption.NewAuthorizer(decryption.AuthorizerConfig{
		Domain:       fhe.DecryptionDomain{ChainID: info.ChainID, VerifyingContract: info.VerifyingContract},
		DurationDays: authDays,
	}), cli.DecryptionService(), timeout)
	count, err := reveal.RevealCount(ctx, cli.CounterSource(info), id, organizer)
	if err != nil {
		return fmt.Errorf("reveal: %w", err)
	}
	if count != 1 {
		return fmt.Errorf("reveal: got %d attendees, expected 1", count)
	}
	log.Infow("attendance revealed", "exhibitId", id, "count", count)

	if _, err := reveal.RevealCount(ctx, cli.CounterSource(info), id, newKeys()); !errors.Is(err, fhe.ErrDecryptionDenied) {
		return fmt.Errorf("reveal by a stranger: expected denial, got %v", err)
	}

	if err := expectCode(checkIn(), api.ErrAlreadySignedIn, "repeated check-in"); err != nil {
		return err
	}

	tokenID, err := cli.MintPass(ctx, info, attendee, id)
	if err != nil {
		return fmt.Errorf("mint pass: %w", err)
	}
	log.Infow("pass minted", "exhibitId", id, "tokenId", tokenID)
	_, err = cli.MintPass(ctx, info, attendee, id)
	if err := expectCode(err, api.ErrNotEligible, "second mint"); err != nil {
		return err
	}

	status, err := cli.PassStatus(ctx, id, attendee.Address())
	if err != nil {
		return err
	}
	if !status.Minted || status.TokenID != tokenID {
		return fmt.Errorf("pass status: %+v", status.PassStatus)
	}
	return checkListing(ctx, cli, id)
}

func checkListing(ctx context.Context, cli *client.HTTPclient, id types.ExhibitID) error {
	headers, err := cli.Exhibits(ctx, id, 1)
	if err != nil {
		return err
	}
	if len(headers) != 1 || headers[0].ID != id {
		return fmt.Errorf("listing: unexpected headers %v", headers)
	}
	return nil
}
