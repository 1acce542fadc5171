package i18n

// RuMessages Russian message catalog
var RuMessages = map[string]string{
	"start": "Привет, %s! 🚀\n\n" +
		"Я персональный ассистент тимлида на пути к CTO.\n\n" +
		"**Что я умею:**\n" +
		"📋 Управление задачами (Obsidian)\n" +
		"📰 Анализ статей с оценкой полезности\n" +
		"📚 Оценка книг для карьерного роста\n" +
		"⏰ Утренние напоминания о задачах\n" +
		"💬 AI-ассистент для любых вопросов\n\n" +
		"/help покажет все команды",
	"help": "🤖 **Справка по командам**\n\n" +
		"**💬 Чат:**\n" +
		"/clear, очистить историю\n" +
		"/model, настройки модели\n" +
		"/stats, статистика диалога\n\n" +
		"**📋 Тикеты (Obsidian):**\n" +
		"`/ticket Название задачи`, создать тикет\n" +
		"`/ticket Задача -p high -d tomorrow`, с приоритетом и дедлайном\n" +
		"/tickets, активные тикеты (`all`, `done`)\n" +
		"/today, задачи на сегодня\n" +
		"`/done T-XXXX`, завершить тикет\n" +
		"`/delete_ticket T-XXXX`, удалить тикет\n\n" +
		"**📰 Статьи:**\n" +
		"`/article URL`, анализ статьи\n" +
		"или просто отправь ссылку\n\n" +
		"**📚 Книги:**\n" +
		"`/book Название by Автор`, оценка книги\n\n" +
		"**⏰ Напоминания:**\n" +
		"/remind, текущие настройки\n" +
		"`/remind 08:30`, изменить время\n" +
		"/remind off | /remind on\n\n" +
		"**🔄 Синхронизация:**\n" +
		"/sync, синхронизировать хранилище",
	"access.denied":   "🚫 Доступ запрещён.",
	"error.generic":   "❌ Что-то пошло не так. Попробуй /clear и повтори.",
	"command.unknown": "🤔 Неизвестная команда. Смотри /help.",

	"chat.cleared":       "🧹 История очищена!",
	"chat.already_empty": "📭 История уже пуста.",
	"model.info": "⚙️ **Конфигурация:**\n\n" +
		"• Провайдер: `%s`\n" +
		"• Модель: `%s`\n" +
		"• Макс. история: `%d` обменов\n" +
		"• API ключ: %s\n" +
		"• Активных диалогов: `%d`",
	"stats.info": "📊 **Статистика @%s**\n\n" +
		"💬 Сообщений в диалоге: `%d` (~%d токенов)\n" +
		"📋 Активных тикетов: `%d`\n" +
		"⚠️ Просрочено: `%d`\n" +
		"🔢 Использовано токенов: `%d` за `%d` запросов",

	"ticket.usage": "📝 **Создание тикета**\n\n" +
		"Использование:\n" +
		"`/ticket Название задачи`\n" +
		"`/ticket Задача -p high -d 2024-12-31 -t тег1,тег2`\n" +
		"`/ticket Задача -d tomorrow -- описание`\n\n" +
		"**Флаги:**\n" +
		"• `-p` приоритет: `low`, `medium`, `high`, `critical`\n" +
		"• `-d` дедлайн: `2024-12-31`, `today`, `tomorrow`, `week`\n" +
		"• `-t` теги: `работа,встреча`\n" +
		"• `--` всё после двойного дефиса это описание",
	"ticket.empty_title":  "❌ Укажи название тикета.",
	"ticket.created":      "✅ **Тикет создан!**\n\n%s",
	"ticket.field.id":     "ID: `%s`",
	"ticket.field.state":  "Статус: %s | Приоритет: %s",
	"ticket.field.due":    "📅 Дедлайн: %s",
	"ticket.field.tags":   "🏷 Теги: %s",
	"ticket.field.desc":   "📝 %s",
	"ticket.field.create": "🕐 Создан: %s",
	"ticket.not_found":    "❌ Тикет `%s` не найден.",
	"tickets.all":         "📋 **Все тикеты:**",
	"tickets.done":        "✅ **Завершённые тикеты:**",
	"tickets.active":      "📋 **Активные тикеты:**",
	"tickets.none":        "📭 Тикетов не найдено.",
	"tickets.total":       "📊 Всего: %d",
	"today.header":        "🌅 **Задачи на сегодня:**\n",
	"today.overdue":       "⚠️ **Просрочено:**",
	"today.planned":       "📋 **На сегодня:**",
	"today.none":          "✨ На сегодня задач нет! Время запланировать что-то новое.",
	"today.active_total":  "📊 Всего активных: %d",
	"done.usage":          "Использование: `/done T-XXXXXX-XXXX`",
	"done.ok":             "✅ Тикет `%s` завершён!",
	"delete.usage":        "Использование: `/delete_ticket T-XXXXXX-XXXX`",
	"delete.ok":           "🗑 Тикет `%s` удалён.",

	"sync.not_configured": "⚙️ Синхронизация не настроена.\n\n" +
		"Задай одну из переменных:\n" +
		"• `ICLOUD_VAULT_PATH` для копирования в папку\n" +
		"• `RCLONE_REMOTE` для rclone bisync",
	"sync.running":          "🔄 Синхронизация...",
	"sync.ok.rclone":        "✅ rclone синхронизация завершена.",
	"sync.ok.baseline":      "✅ Первичная rclone синхронизация завершена.",
	"sync.ok.mirror":        "✅ Скопировано в:\n`%s`\n(обновлено %d, без изменений %d)",
	"sync.err.tool_missing": "❌ `rclone` не найден.",
	"sync.err.timeout":      "❌ Таймаут (%d сек).",
	"sync.err.failed":       "❌ Ошибка синхронизации:\n```\n%s\n```",
	"sync.after":            "\n\n🔄 %s",

	"article.usage": "📰 **Анализ статьи**\n\n" +
		"Использование:\n" +
		"• `/article https://example.com/article`\n" +
		"• или просто отправь ссылку в чат\n\n" +
		"Бот:\n" +
		"1. Извлечёт текст статьи\n" +
		"2. Сделает саммари\n" +
		"3. Оценит полезность на пути TL → CTO",
	"article.analyzing": "📰 Анализирую статью...\n`%s`",
	"article.failed": "❌ Не удалось извлечь текст статьи. Возможные причины:\n" +
		"• Сайт блокирует парсинг\n" +
		"• Страница требует авторизации\n" +
		"• Контент загружается через JavaScript",
	"article.meta":     "📄 **%s**\n🌐 Язык: %s\n📏 ~%d слов\n\n🤖 Анализирую содержание...",
	"lang.ru":          "🇷🇺 Русский",
	"lang.en":          "🇬🇧 Английский",
	"lang.unknown":     "❔ Не определён",
	"article.truncate": "\n\n[...текст обрезан...]",
	"article.request": "**Заголовок:** %s\n" +
		"**URL:** %s\n" +
		"**Язык оригинала:** %s\n" +
		"**Слов:** ~%d\n\n" +
		"**Текст статьи:**\n%s",
	"book.usage": "📚 **Оценка книги для пути TL → CTO**\n\n" +
		"Использование:\n" +
		"• `/book Accelerate by Nicole Forsgren`\n" +
		"• `/book The Manager's Path`\n\n" +
		"Бот оценит полезность книги для роста TL → CTO (1-10), выделит ключевые идеи,\n" +
		"подскажет, на каком этапе карьеры читать, и предложит альтернативы.",
	"book.evaluating": "📚 Оцениваю книгу: *%s*...",
	"book.request":    "Оцени книгу: %s",

	"remind.status": "⏰ **Настройки напоминаний**\n\n" +
		"Статус: %s\n" +
		"Время: `%02d:%02d`\n" +
		"Часовой пояс: `%s`\n\n" +
		"Команды:\n" +
		"• `/remind 08:30` изменить время\n" +
		"• `/remind off` выключить\n" +
		"• `/remind on` включить",
	"remind.state.on":      "✅ Включены",
	"remind.state.off":     "❌ Выключены",
	"remind.off":           "❌ Напоминания выключены.",
	"remind.on":            "✅ Напоминания включены: `%02d:%02d`",
	"remind.set":           "✅ Напоминания установлены на `%02d:%02d` (%s)",
	"remind.bad_format":    "❌ Неверный формат. Используй: `/remind 09:00`",
	"remind.no_recipients": "⚠️ Получатели не заданы (ALLOWED_USERS), напоминания некому отправить.",
	"digest.header":        "🌅 **Доброе утро! Обзор на сегодня:**\n",
	"digest.overdue":       "⚠️ **Просрочено:**",
	"digest.planned":       "📋 **Запланировано на сегодня:**",
	"digest.undated":       "📌 **Без дедлайна:** %d тикетов",
	"digest.empty":         "✨ На сегодня задач нет! Время для стратегического планирования 🚀",
	"digest.active":        "\n📊 Активных тикетов: %d",
	"digest.footer":        "\n_Управление: /tickets, /today, /done_",

	"llm.not_configured": "❌ Клиент не инициализирован. Проверь OPENROUTER_API_KEY.",
	"llm.empty":          "⚠️ Модель вернула пустой ответ.",
	"llm.err.auth":       "❌ Неверный API ключ OpenRouter.",
	"llm.err.quota":      "❌ Недостаточно кредитов на OpenRouter.",
	"llm.err.rate_limit": "⏳ Слишком много запросов. Подожди немного.",
	"llm.err.model":      "❌ Модель `%s` не найдена.",
	"llm.err.timeout":    "⏳ Модель слишком долго отвечает. Попробуй ещё раз.",
	"llm.err.generic":    "❌ Ошибка API: %s",
	"llm.prompt.chat":    "Ты персональный AI-ассистент тимлида, который стремится стать CTO. Отвечай на языке вопроса. Учитывай карьерные цели пользователя, когда это уместно. Будь конкретным и давай практичные советы.",
	"llm.prompt.article": "Ты персональный ассистент тимлида, который стремится стать CTO.\n\nПроанализируй статью и ответь **на русском языке**:\n\n1. 📌 **Саммари**, 3-5 предложений\n2. 💡 **Ключевые идеи**, 3-7 пунктов\n3. 🎯 **Полезность для пути TL → CTO**, оценка от 1 до 10 с обоснованием\n4. 📂 **Категория**: технологии / архитектура / менеджмент / лидерство / стратегия / продукт / культура / другое\n5. ✅ **Рекомендация**: стоит ли читать полностью, кому и зачем\n6. 🔑 **Actionable insights**: что можно применить в работе\n\nЕсли статья слабая или нерелевантная, скажи об этом прямо.",
	"llm.prompt.book":    "Ты персональный ассистент тимлида, который стремится стать CTO.\n\nОцени книгу и ответь **на русском языке**:\n\n1. 📖 **О чём книга**, 2-3 предложения\n2. 🎯 **Полезность для пути TL → CTO**, оценка от 1 до 10 с обоснованием\n3. 📂 **Категория**: технический менеджмент / лидерство / архитектура / стратегия / soft skills / продуктовое мышление / другое\n4. 💡 **Чему научит**, список навыков и знаний\n5. ⏱ **Когда читать**: TL / Senior TL / Engineering Manager / VP Eng / CTO\n6. ⚡ **Ключевые идеи**, 3-5 самых важных\n7. 📚 **Альтернативы**, 2-3 похожие или дополняющие книги\n8. 🏆 **Вердикт**: must read / стоит прочитать / можно пропустить / не стоит\n\nЕсли не знаешь книгу, так и скажи и оцени по названию и автору. Если книга устарела, скажи об этом и предложи современную замену.",
	"console.welcome":    "Консоль vaultbot. /help покажет команды, /exit для выхода.",
	"console.bye":        "пока",
	"board.title":        "Доска задач",
	"board.stats":        "%d активных · %d сегодня · %d просрочено · %d завершено",
	"board.empty":        "_Активных тикетов нет._",
	"board.help":         "r обновить · ↑/↓ прокрутка · q выход",
	"board.loading":      "Загрузка хранилища...",
	"board.error":        "Ошибка: %v",
	"board.section.other": "📂 **Позже:**",
}
