package i18n

// EnMessages English message catalog
var EnMessages = map[string]string{
	// General
	"start": "Hi, %s! 🚀\n\n" +
		"I am a personal assistant for a team lead on the way to CTO.\n\n" +
		"**What I can do:**\n" +
		"📋 Task management (Obsidian)\n" +
		"📰 Article analysis with a usefulness score\n" +
		"📚 Book evaluation for career growth\n" +
		"⏰ Morning task reminders\n" +
		"💬 AI assistant for any question\n\n" +
		"/help shows every command",
	"help": "🤖 **Command reference**\n\n" +
		"**💬 Chat:**\n" +
		"/clear, clear the conversation\n" +
		"/model, model settings\n" +
		"/stats, conversation statistics\n\n" +
		"**📋 Tickets (Obsidian):**\n" +
		"`/ticket Task title`, create a ticket\n" +
		"`/ticket Task -p high -d tomorrow`, with priority and due date\n" +
		"/tickets, active tickets (`all`, `done`)\n" +
		"/today, today's tasks\n" +
		"`/done T-XXXX`, complete a ticket\n" +
		"`/delete_ticket T-XXXX`, delete a ticket\n\n" +
		"**📰 Articles:**\n" +
		"`/article URL`, analyze an article\n" +
		"or just send a link\n\n" +
		"**📚 Books:**\n" +
		"`/book Title by Author`, evaluate a book\n\n" +
		"**⏰ Reminders:**\n" +
		"/remind, current settings\n" +
		"`/remind 08:30`, change the time\n" +
		"/remind off | /remind on\n\n" +
		"**🔄 Sync:**\n" +
		"/sync, sync the vault",
	"access.denied":   "🚫 Access denied.",
	"error.generic":   "❌ Something went wrong. Try /clear and repeat.",
	"command.unknown": "🤔 Unknown command. See /help.",

	// Chat
	"chat.cleared":       "🧹 Conversation cleared!",
	"chat.already_empty": "📭 The conversation is already empty.",
	"model.info": "⚙️ **Configuration:**\n\n" +
		"• Provider: `%s`\n" +
		"• Model: `%s`\n" +
		"• Max history: `%d` exchanges\n" +
		"• API key: %s\n" +
		"• Active conversations: `%d`",
	"stats.info": "📊 **Statistics for @%s**\n\n" +
		"💬 Messages in conversation: `%d` (~%d tokens)\n" +
		"📋 Active tickets: `%d`\n" +
		"⚠️ Overdue: `%d`\n" +
		"🔢 Tokens used: `%d` in `%d` requests",

	// Tickets
	"ticket.usage": "📝 **Create a ticket**\n\n" +
		"Usage:\n" +
		"`/ticket Task title`\n" +
		"`/ticket Task -p high -d 2024-12-31 -t tag1,tag2`\n" +
		"`/ticket Task -d tomorrow -- description`\n\n" +
		"**Flags:**\n" +
		"• `-p` priority: `low`, `medium`, `high`, `critical`\n" +
		"• `-d` due date: `2024-12-31`, `today`, `tomorrow`, `week`\n" +
		"• `-t` tags: `work,meeting`\n" +
		"• `--` everything after the double dash is the description",
	"ticket.empty_title":  "❌ Please give the ticket a title.",
	"ticket.created":      "✅ **Ticket created!**\n\n%s",
	"ticket.field.id":     "ID: `%s`",
	"ticket.field.state":  "Status: %s | Priority: %s",
	"ticket.field.due":    "📅 Due: %s",
	"ticket.field.tags":   "🏷 Tags: %s",
	"ticket.field.desc":   "📝 %s",
	"ticket.field.create": "🕐 Created: %s",
	"ticket.not_found":    "❌ Ticket `%s` not found.",
	"tickets.all":         "📋 **All tickets:**",
	"tickets.done":        "✅ **Completed tickets:**",
	"tickets.active":      "📋 **Active tickets:**",
	"tickets.none":        "📭 No tickets found.",
	"tickets.total":       "📊 Total: %d",
	"today.header":        "🌅 **Today's tasks:**\n",
	"today.overdue":       "⚠️ **Overdue:**",
	"today.planned":       "📋 **For today:**",
	"today.none":          "✨ Nothing due today! Time to plan something new.",
	"today.active_total":  "📊 Active in total: %d",
	"done.usage":          "Usage: `/done T-XXXXXX-XXXX`",
	"done.ok":             "✅ Ticket `%s` completed!",
	"delete.usage":        "Usage: `/delete_ticket T-XXXXXX-XXXX`",
	"delete.ok":           "🗑 Ticket `%s` deleted.",

	// Sync
	"sync.not_configured": "⚙️ Sync is not configured.\n\n" +
		"Set one of:\n" +
		"• `ICLOUD_VAULT_PATH` for a directory mirror\n" +
		"• `RCLONE_REMOTE` for rclone bisync",
	"sync.running":          "🔄 Syncing...",
	"sync.ok.rclone":        "✅ rclone sync completed.",
	"sync.ok.baseline":      "✅ Initial rclone sync completed.",
	"sync.ok.mirror":        "✅ Copied to:\n`%s`\n(%d updated, %d unchanged)",
	"sync.err.tool_missing": "❌ `rclone` not found.",
	"sync.err.timeout":      "❌ Timed out (%d sec).",
	"sync.err.failed":       "❌ Sync error:\n```\n%s\n```",
	"sync.after":            "\n\n🔄 %s",

	// Articles and books
	"article.usage": "📰 **Article analysis**\n\n" +
		"Usage:\n" +
		"• `/article https://example.com/article`\n" +
		"• or just send a link to the chat\n\n" +
		"The bot will:\n" +
		"1. Extract the article text\n" +
		"2. Summarize it\n" +
		"3. Rate its usefulness on the TL → CTO path",
	"article.analyzing": "📰 Analyzing the article...\n`%s`",
	"article.failed": "❌ Could not extract the article text. Possible reasons:\n" +
		"• The site blocks scraping\n" +
		"• The page requires a login\n" +
		"• The content is rendered by JavaScript",
	"article.meta":     "📄 **%s**\n🌐 Language: %s\n📏 ~%d words\n\n🤖 Analyzing the content...",
	"lang.ru":          "🇷🇺 Russian",
	"lang.en":          "🇬🇧 English",
	"lang.unknown":     "❔ Unknown",
	"article.truncate": "\n\n[...text truncated...]",
	"article.request": "**Title:** %s\n" +
		"**URL:** %s\n" +
		"**Original language:** %s\n" +
		"**Words:** ~%d\n\n" +
		"**Article text:**\n%s",
	"book.usage": "📚 **Book evaluation for the TL → CTO path**\n\n" +
		"Usage:\n" +
		"• `/book Accelerate by Nicole Forsgren`\n" +
		"• `/book The Manager's Path`\n\n" +
		"The bot rates the book for TL → CTO growth (1-10), lists key ideas,\n" +
		"says when in a career to read it and suggests alternatives.",
	"book.evaluating": "📚 Evaluating the book: *%s*...",
	"book.request":    "Evaluate the book: %s",

	// Reminders
	"remind.status": "⏰ **Reminder settings**\n\n" +
		"Status: %s\n" +
		"Time: `%02d:%02d`\n" +
		"Time zone: `%s`\n\n" +
		"Commands:\n" +
		"• `/remind 08:30` change the time\n" +
		"• `/remind off` turn off\n" +
		"• `/remind on` turn on",
	"remind.state.on":      "✅ On",
	"remind.state.off":     "❌ Off",
	"remind.off":           "❌ Reminders turned off.",
	"remind.on":            "✅ Reminders turned on: `%02d:%02d`",
	"remind.set":           "✅ Reminders set for `%02d:%02d` (%s)",
	"remind.bad_format":    "❌ Invalid format. Use: `/remind 09:00`",
	"remind.no_recipients": "⚠️ No recipients configured (ALLOWED_USERS), reminders cannot be delivered.",
	"digest.header":        "🌅 **Good morning! Today's overview:**\n",
	"digest.overdue":       "⚠️ **Overdue:**",
	"digest.planned":       "📋 **Planned for today:**",
	"digest.undated":       "📌 **No due date:** %d ticket(s)",
	"digest.empty":         "✨ Nothing due today! Time for strategic planning 🚀",
	"digest.active":        "\n📊 Active tickets: %d",
	"digest.footer":        "\n_Manage: /tickets, /today, /done_",

	// Completion service
	"llm.not_configured":  "❌ The completion client is not initialized. Check OPENROUTER_API_KEY.",
	"llm.empty":           "⚠️ The model returned an empty response.",
	"llm.err.auth":        "❌ Invalid OpenRouter API key.",
	"llm.err.quota":       "❌ Not enough credits on OpenRouter.",
	"llm.err.rate_limit":  "⏳ Too many requests. Please wait.",
	"llm.err.model":       "❌ Model `%s` not found.",
	"llm.err.timeout":     "⏳ The model took too long to answer. Try again.",
	"llm.err.generic":     "❌ API error: %s",
	"llm.key.present":     "✅",
	"llm.key.missing":     "❌",
	"llm.prompt.chat":     "You are the personal AI assistant of a team lead who aims to become a CTO. Answer in the language of the question. Take the user's career goals into account when relevant. Be specific and give actionable advice.",
	"llm.prompt.article":  "You are the personal assistant of a team lead who aims to become a CTO.\n\nAnalyze the article and answer **in English**:\n\n1. 📌 **Summary**, 3-5 sentences\n2. 💡 **Key ideas**, 3-7 bullet points\n3. 🎯 **Usefulness for the TL → CTO path**, a score from 1 to 10 with reasoning\n4. 📂 **Category**: technology / architecture / management / leadership / strategy / product / culture / other\n5. ✅ **Recommendation**: is it worth reading in full, for whom and why\n6. 🔑 **Actionable insights**: what can be applied at work\n\nIf the article is weak or irrelevant, say so directly.",
	"llm.prompt.book":     "You are the personal assistant of a team lead who aims to become a CTO.\n\nEvaluate the book and answer **in English**:\n\n1. 📖 **What it is about**, 2-3 sentences\n2. 🎯 **Usefulness for the TL → CTO path**, a score from 1 to 10 with reasoning\n3. 📂 **Category**: technical management / leadership / architecture / strategy / soft skills / product thinking / other\n4. 💡 **What it teaches**, a list of skills and knowledge\n5. ⏱ **When to read**: TL / Senior TL / Engineering Manager / VP Eng / CTO\n6. ⚡ **Key ideas**, the 3-5 most important\n7. 📚 **Alternatives**, 2-3 similar or complementary books\n8. 🏆 **Verdict**: must read / worth reading / can skip / not worth it\n\nIf you do not know the book, say so and judge by title and author. If it is outdated, say so and suggest a modern replacement.",
	"console.welcome":     "vaultbot console. Type /help for commands, /exit to quit.",
	"console.bye":         "bye",
	"board.title":         "Vault board",
	"board.stats":         "%d active · %d today · %d overdue · %d done",
	"board.empty":         "_No active tickets._",
	"board.help":          "r refresh · ↑/↓ scroll · q quit",
	"board.loading":       "Loading vault...",
	"board.error":         "Error: %v",
	"board.section.other": "📂 **Later:**",
}
