package cli

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/iudanet/bandsync/internal/models"
)

func (a *App) songCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "song",
		Short: "Manage the band's songs",
	}
	cmd.AddCommand(
		a.songAddCmd(),
		a.songRenameCmd(),
		a.songDeleteCmd(),
		a.songListCmd(),
		a.songAttachCmd(),
	)
	return cmd
}

func (a *App) songAddCmd() *cobra.Command {
	var song models.Song
	cmd := &cobra.Command{
		Use:   "add GROUP TITLE",
		Short: "Add a song",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			group, err := a.group(ctx, args[0])
			if err != nil {
				return err
			}
			song.Title = args[1]
			if err := a.library.AddSong(ctx, group.GroupID, &song); err != nil {
				return fmt.Errorf("failed to add song: %w", err)
			}
			a.io.Printf("Song %q added, id %s\n", song.Title, song.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&song.Artist, "artist", "", "artist")
	cmd.Flags().StringVar(&song.Key, "key", "", "musical key")
	cmd.Flags().IntVar(&song.Tempo, "tempo", 0, "tempo in BPM")
	cmd.Flags().StringVar(&song.Notes, "notes", "", "performance notes")
	return cmd
}

func (a *App) songRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename GROUP SONG_ID TITLE",
		Short: "Rename a song",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			group, err := a.group(ctx, args[0])
			if err != nil {
				return err
			}
			song, err := a.library.GetSong(ctx, args[1])
			if err != nil {
				return fmt.Errorf("failed to get song: %w", err)
			}
			old := song.Title
			song.Title = args[2]
			if err := a.library.UpdateSong(ctx, group.GroupID, song); err != nil {
				return fmt.Errorf("failed to rename song: %w", err)
			}
			a.io.Printf("Song %q renamed to %q\n", old, song.Title)
			return nil
		},
	}
}

func (a *App) songDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete GROUP SONG_ID",
		Short: "Delete a song with its files",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			group, err := a.group(ctx, args[0])
			if err != nil {
				return err
			}
			if err := a.library.DeleteSong(ctx, group.GroupID, args[1]); err != nil {
				return fmt.Errorf("failed to delete song: %w", err)
			}
			a.io.Printf("Song %s deleted\n", args[1])
			return nil
		},
	}
}

func (a *App) songListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list GROUP",
		Short: "List songs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			group, err := a.group(ctx, args[0])
			if err != nil {
				return err
			}
			songs, err := a.library.ListSongs(ctx, group.GroupID)
			if err != nil {
				return fmt.Errorf("failed to list songs: %w", err)
			}
			if len(songs) == 0 {
				a.io.Println("No songs yet.")
				return nil
			}

			w := tabwriter.NewWriter(a.io, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tARTIST\tKEY\tTEMPO")
			for _, s := range songs {
				tempo := ""
				if s.Tempo > 0 {
					tempo = fmt.Sprint(s.Tempo)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", s.ID, s.Title, s.Artist, s.Key, tempo)
			}
			return w.Flush()
		},
	}
}

func (a *App) songAttachCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "attach GROUP SONG_ID FILE",
		Short: "Attach a sheet music or chart file to a song",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			group, err := a.group(ctx, args[0])
			if err != nil {
				return err
			}
			content, err := os.ReadFile(args[2])
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}

			name := filepath.Base(args[2])
			mimeType := mime.TypeByExtension(filepath.Ext(name))
			if mimeType == "" {
				mimeType = "application/octet-stream"
			}
			file := &models.SongFile{SongID: args[1], FileName: name, MimeType: mimeType}
			if err := a.library.AddSongFile(ctx, group.GroupID, file, content); err != nil {
				return fmt.Errorf("failed to attach file: %w", err)
			}
			a.io.Printf("File %s attached, id %s (%d bytes)\n", file.FileName, file.ID, file.Size)
			return nil
		},
	}
}
